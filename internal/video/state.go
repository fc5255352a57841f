package video

// State is the lifecycle of one video operation.
type State int

const (
	StateSubmitted State = iota
	StatePolling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSubmitted:
		return "submitted"
	case StatePolling:
		return "polling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Carousel is shown one message per poll tick while the operation runs.
var Carousel = [...]string{
	"The digital architect is sketching the initial concepts...",
	"Rendering the structural framework in high definition...",
	"Applying textures and lighting to bring the design to life...",
	"Polishing the final details for a stunning visual tour...",
	"Almost there! Preparing your video for presentation.",
}

const (
	MessageStarting = "Starting video generation... this may take a few minutes."
	MessageComplete = "Video generation complete!"
)

// CarouselMessage returns the message for the given zero-based poll tick.
func CarouselMessage(tick int) string {
	if tick < 0 {
		tick = -tick
	}
	return Carousel[tick%len(Carousel)]
}
