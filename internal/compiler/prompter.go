package compiler

import "context"

// Prompt texts and options for the interactive fallback.
const (
	MsgNotFound          = "C++ compiler could not be found. Do you have it installed or wish to download it?"
	OptChooseExecutable  = "Choose installed executable"
	OptDownload          = "Download"
	MsgDownloaded        = "C++ compiler downloaded. Do you want to extract it?"
	OptChooseExtractDir  = "Choose extract location"
	OptNo                = "No"
	TitleExecutable      = "C++ compiler executable"
	TitleExtractLocation = "C++ compiler extract location"
	MsgDownloading       = "Downloading..."
	MsgDownloadFailed    = "Failed to download compiler!"
	MsgExtracting        = "Extracting..."
	MsgExtracted         = "Extracted! Everything's ready to go!"
	MsgPathAdded         = "Added compiler to path. Please restart your terminal for this to work (only needed one time)"
)

// PathRequest describes a file or folder picker.
type PathRequest struct {
	Title  string
	Folder bool
}

// Prompter is the user-facing side of discovery. Choose and PickPath return
// "" when the user dismisses the prompt.
type Prompter interface {
	Notify(message string)
	Choose(ctx context.Context, message string, options ...string) (string, error)
	PickPath(ctx context.Context, req PathRequest) (string, error)
	Progress(task string, done, total int64)
}
