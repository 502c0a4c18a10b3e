package preview

import "github.com/pkg/errors"

const (
	// OriginalWindow is the title of the window showing the input image.
	OriginalWindow = "Original Image"
	// FinalWindow is the title of the window showing the annotated image.
	FinalWindow = "Final Image"
)

// ErrUnavailable is returned by Show in builds without OpenCV.
var ErrUnavailable = errors.New("preview windows need a build with -tags gocv")
