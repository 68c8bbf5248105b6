// Package checkpoint persists conversion progress so an interrupted run can
// resume where it stopped.
//
// The checkpoint records every input that has been routed through the
// pipeline together with the results collected so far:
//
//	{
//	  "timestamp": "2024-05-01T12:00:00Z",
//	  "processedCount": 100,
//	  "totalCount": 400,
//	  "results": [...],
//	  "processedFiles": ["/data/contents/a/x.png", ...]
//	}
//
// Saves replace the file atomically and are serialized, so a crash leaves
// either the previous checkpoint or the new one. Load never fails: a
// missing, unreadable or malformed checkpoint is treated as a fresh start.
// The checkpoint is removed once a run completes.
package checkpoint
