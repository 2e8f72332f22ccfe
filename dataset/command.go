// Package dataset turns logged driving samples into the supervised targets consumed by the policy:
// ego-relative future waypoints, the ego-relative target point and a one-hot high-level command.
package dataset

import "go.viam.com/e2edrive/utils"

// Command is a discrete high-level navigation instruction recorded with each sample.
type Command int

// Known command codes.
const (
	CommandVoid            Command = -1
	CommandLeft            Command = 1
	CommandRight           Command = 2
	CommandStraight        Command = 3
	CommandLaneFollow      Command = 4
	CommandChangeLaneLeft  Command = 5
	CommandChangeLaneRight Command = 6
)

// NumCommands is the width of the one-hot command encoding.
const NumCommands = 6

func (c Command) String() string {
	switch c {
	case CommandVoid:
		return "void"
	case CommandLeft:
		return "left"
	case CommandRight:
		return "right"
	case CommandStraight:
		return "straight"
	case CommandLaneFollow:
		return "lane_follow"
	case CommandChangeLaneLeft:
		return "change_lane_left"
	case CommandChangeLaneRight:
		return "change_lane_right"
	default:
		return "unknown"
	}
}

// Index returns the position of the command in the one-hot encoding. Void shares the lane
// follow slot.
func (c Command) Index() (int, error) {
	code := c
	if code == CommandVoid {
		code = CommandLaneFollow
	}
	if code < CommandLeft || code > CommandChangeLaneRight {
		return 0, utils.NewOutOfRangeError("command", int(c), -1, 1, 2, 3, 4, 5, 6)
	}
	return int(code) - 1, nil
}

// OneHot encodes the command as a vector of width NumCommands.
func (c Command) OneHot() ([NumCommands]float64, error) {
	var out [NumCommands]float64
	idx, err := c.Index()
	if err != nil {
		return out, err
	}
	out[idx] = 1
	return out, nil
}
