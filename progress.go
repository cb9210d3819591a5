package ftp

// ProgressFunc reports transfer progress: current is the number of bytes
// moved so far, total is the server-reported SIZE for a download or the
// local file size for an upload (spec §6).
type ProgressFunc func(current, total int64)
