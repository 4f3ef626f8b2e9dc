package tree

import "github.com/vanderheijden86/rv/pkg/model"

// IconName returns the presentation icon for a checkpoint, e.g.
// "startpoint-even" or "abortpoint-error-odd". Unknown types have no icon.
// The name has no structural meaning and is ignored by Diff and matching.
func IconName(t model.CheckpointType, encoding string, even bool) string {
	name := t.String()
	if name == "" {
		return ""
	}
	if encoding == model.EncodingThrowable {
		name += "-error"
	}
	if even {
		return name + "-even"
	}
	return name + "-odd"
}
