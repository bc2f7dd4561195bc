// Package logtail reads the tail of the Stockroom log file for the Logs view.
//
// Read keeps a ring buffer of maxLines entries and scans the file once, so
// memory stays bounded no matter how large the log grows:
//
//	lines, err := logtail.Read(cfg.LogFile, 400)
//	if err != nil {
//		log.Printf("read log: %v", err)
//	}
//
// Parse splits a line written by the standard logger (log.LstdFlags) into its
// timestamp and message and assigns a Level. Notifications mirrored to the
// log carry a "[severity]" prefix; refresh and sweep failures contain
// "failed". The TUI maps levels to theme colors.
package logtail
