package playback

import "strconv"

// Phase is the lifecycle position of a playback session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseResolving
	PhaseAttaching
	PhaseBuffering
	PhasePlaying
	PhasePaused
	PhaseError
	PhaseClosed
)

var phaseNames = [...]string{"idle", "resolving", "attaching", "buffering", "playing", "paused", "error", "closed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "phase(" + strconv.Itoa(int(p)) + ")"
	}
	return phaseNames[p]
}

// ErrorKind classifies a terminal session error.
type ErrorKind string

const (
	ErrorUnavailable      ErrorKind = "unavailable"
	ErrorConnectionFailed ErrorKind = "connectionFailed"
	ErrorPlaybackFailed   ErrorKind = "playbackFailed"
)

// Reason is the user-facing message for the error.
func (k ErrorKind) Reason() string {
	switch k {
	case ErrorUnavailable:
		return "Stream link unavailable."
	case ErrorConnectionFailed:
		return "Connection failed"
	default:
		return "Stream error."
	}
}

// AspectMode is how video is fitted into its surface.
type AspectMode string

const (
	AspectContain AspectMode = "contain"
	AspectCover   AspectMode = "cover"
	AspectFill    AspectMode = "fill"
)

// Next returns the following mode in the contain, cover, fill cycle.
func (m AspectMode) Next() AspectMode {
	switch m {
	case AspectContain:
		return AspectCover
	case AspectCover:
		return AspectFill
	default:
		return AspectContain
	}
}

// AutoQuality selects adaptive level switching.
const AutoQuality = -1

// Level is one selectable quality rendition.
type Level struct {
	Index  int    `json:"index"`
	Height int    `json:"height"`
	Label  string `json:"label"`
}

// LevelFromHeight builds a Level, labelling unknown heights "Auto".
func LevelFromHeight(index, height int) Level {
	label := "Auto"
	if height > 0 {
		label = strconv.Itoa(height) + "p"
	}
	return Level{Index: index, Height: height, Label: label}
}

// State is an observable snapshot of the controller.
type State struct {
	Phase           Phase      `json:"phase"`
	URL             string     `json:"url,omitempty"`
	IsPlaying       bool       `json:"isPlaying"`
	IsLoading       bool       `json:"isLoading"`
	Levels          []Level    `json:"levels"`
	CurrentQuality  int        `json:"currentQuality"`
	ControlsVisible bool       `json:"controlsVisible"`
	QualityMenuOpen bool       `json:"qualityMenuOpen"`
	Error           *ErrorKind `json:"error,omitempty"`
	Volume          float64    `json:"volume"`
	IsMuted         bool       `json:"isMuted"`
	AutoMuted       bool       `json:"autoMuted"`
	AspectMode      AspectMode `json:"aspectMode"`
}

func initialState() State {
	return State{
		Phase:           PhaseIdle,
		Levels:          []Level{},
		CurrentQuality:  AutoQuality,
		ControlsVisible: true,
		Volume:          1,
		AspectMode:      AspectContain,
	}
}

func (s State) clone() State {
	s.Levels = append([]Level{}, s.Levels...)
	if s.Error != nil {
		k := *s.Error
		s.Error = &k
	}
	return s
}

func (s State) hasLevel(index int) bool {
	for _, l := range s.Levels {
		if l.Index == index {
			return true
		}
	}
	return false
}
