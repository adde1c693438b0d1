package exitcode

const (
	Success          = 0
	UsageError       = 1
	ValidationError  = 2
	DBConnError      = 3
	ImportError      = 4
	PipelineError    = 5
	IncompleteUpload = 6
	ExportError      = 7
	ServeError       = 8
)
