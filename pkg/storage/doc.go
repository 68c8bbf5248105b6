// Package storage provides the file operations shared by the progress
// store, the results publisher and the sampler.
//
// Every artifact megrep writes is replaced atomically: data goes to a
// sibling temporary file which is synced and then renamed over the target,
// so a reader or a crashed run never observes a half-written file.
//
//	if err := storage.WriteJSON("results.json", artifact); err != nil {
//	    log.Printf("publish failed: %v", err)
//	}
//
// CopyFile and MoveFile preserve nothing but content and permissions; they
// create missing parent directories of the destination.
package storage
