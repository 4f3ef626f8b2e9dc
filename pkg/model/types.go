package model

import (
	"encoding/base64"
	"fmt"
)

// Report is the root container of one test run's checkpoints.
// Checkpoints arrive pre-order flattened, each tagged with its nesting level.
type Report struct {
	Name        string       `json:"name"`
	StorageID   string       `json:"storageId"`
	XML         string       `json:"xml,omitempty"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

// Checkpoint represents one recorded step within a report
type Checkpoint struct {
	Name        string         `json:"name"`
	Level       int            `json:"level"`
	Type        CheckpointType `json:"type"`
	Encoding    string         `json:"encoding,omitempty"`
	Message     *string        `json:"message"`
	XML         string         `json:"xml,omitempty"`
	Index       int            `json:"index,omitempty"`
	Checkpoints []Checkpoint   `json:"checkpoints,omitempty"`

	// ShowConverted is set when the message was decoded for display.
	ShowConverted bool `json:"-"`
}

// EncodingBase64 marks a checkpoint message stored as base64.
const EncodingBase64 = "Base64"

// EncodingThrowable marks a checkpoint that captured a stack trace.
const EncodingThrowable = "printStackTrace()"

// Clone creates a deep copy of the report
func (r Report) Clone() Report {
	clone := r
	if r.Checkpoints != nil {
		clone.Checkpoints = make([]Checkpoint, len(r.Checkpoints))
		for i, cp := range r.Checkpoints {
			clone.Checkpoints[i] = cp.Clone()
		}
	}
	return clone
}

// Clone creates a deep copy of the checkpoint
func (c Checkpoint) Clone() Checkpoint {
	clone := c
	if c.Message != nil {
		v := *c.Message
		clone.Message = &v
	}
	if c.Checkpoints != nil {
		clone.Checkpoints = make([]Checkpoint, len(c.Checkpoints))
		for i, child := range c.Checkpoints {
			clone.Checkpoints[i] = child.Clone()
		}
	}
	return clone
}

// Validate checks if the report data is logically valid.
// Level sequencing is checked by the tree builder, not here.
func (r *Report) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("report name cannot be empty")
	}
	for i := range r.Checkpoints {
		if r.Checkpoints[i].Level < 0 {
			return fmt.Errorf("checkpoint %d (%s): level %d cannot be negative",
				i, r.Checkpoints[i].Name, r.Checkpoints[i].Level)
		}
	}
	return nil
}

// MessageText returns the message or the empty string when it is null
func (c Checkpoint) MessageText() string {
	if c.Message == nil {
		return ""
	}
	return *c.Message
}

// DisplayMessage returns the message as it should be shown to a user.
// Base64 encoded messages are decoded when decode is true, in which case
// ShowConverted is set on the checkpoint. Undecodable payloads are shown raw.
func (c *Checkpoint) DisplayMessage(decode bool) string {
	msg := c.MessageText()
	c.ShowConverted = false
	if !decode || c.Encoding != EncodingBase64 {
		return msg
	}
	decoded, err := base64.StdEncoding.DecodeString(msg)
	if err != nil {
		return msg
	}
	c.ShowConverted = true
	return string(decoded)
}

// IsThrowable returns true if the checkpoint carries a stack trace
func (c Checkpoint) IsThrowable() bool {
	return c.Encoding == EncodingThrowable
}

// StringPtr is a convenience for building checkpoints with messages
func StringPtr(s string) *string {
	return &s
}

// CheckpointType categorizes a checkpoint
type CheckpointType int

const (
	TypeStartpoint            CheckpointType = 1
	TypeEndpoint              CheckpointType = 2
	TypeAbortpoint            CheckpointType = 3
	TypeInputpoint            CheckpointType = 4
	TypeOutputpoint           CheckpointType = 5
	TypeInfopoint             CheckpointType = 6
	TypeThreadStartpointError CheckpointType = 7
	TypeThreadStartpoint      CheckpointType = 8
	TypeThreadEndpoint        CheckpointType = 9
)

// IsValid returns true if the type is one of the known checkpoint types
func (t CheckpointType) IsValid() bool {
	return t >= TypeStartpoint && t <= TypeThreadEndpoint
}

// String returns the asset-style name of the type ("startpoint", ...)
func (t CheckpointType) String() string {
	switch t {
	case TypeStartpoint:
		return "startpoint"
	case TypeEndpoint:
		return "endpoint"
	case TypeAbortpoint:
		return "abortpoint"
	case TypeInputpoint:
		return "inputpoint"
	case TypeOutputpoint:
		return "outputpoint"
	case TypeInfopoint:
		return "infopoint"
	case TypeThreadStartpointError:
		return "threadStartpoint-error"
	case TypeThreadStartpoint:
		return "threadStartpoint"
	case TypeThreadEndpoint:
		return "threadEndpoint"
	default:
		return ""
	}
}
