package parking

import "fmt"

// ViewKind names the screen that is shown.
type ViewKind string

const (
	ViewArrived  ViewKind = "arrived"
	ViewParked   ViewKind = "parked"
	ViewFinished ViewKind = "finished"
	// ViewBlank is shown when a left message arrived before any parked one.
	ViewBlank ViewKind = "blank"
)

// Icon names.
const (
	IconCheckCircle = "check-circle"
	IconCar         = "car"
)

const (
	connectingText  = "Connecting to parking system..."
	errorBannerText = "Connection Error"
)

// View is what a renderer needs to draw the screen.
type View struct {
	Kind        ViewKind `json:"kind"`
	Icon        string   `json:"icon,omitempty"`
	Title       string   `json:"title,omitempty"`
	Detail      string   `json:"detail,omitempty"`
	Price       float64  `json:"price"`
	Connecting  bool     `json:"connecting"`
	ErrorBanner string   `json:"error_banner,omitempty"`
}

// Select maps a snapshot to its view.
func Select(s Snapshot) View {
	var v View
	switch {
	case !s.Parked && !s.Left:
		v = View{Kind: ViewArrived, Icon: IconCheckCircle, Title: "You've arrived!"}
		if s.Connection == StatusConnecting {
			v.Connecting = true
			v.Detail = connectingText
		}
	case s.Parked && !s.Left:
		v = View{Kind: ViewParked, Icon: IconCar, Title: "Parked!"}
	case s.Parked && s.Left:
		v = View{
			Kind:   ViewFinished,
			Icon:   IconCheckCircle,
			Title:  "Finished!",
			Detail: fmt.Sprintf("$%.2f Payment completed", s.Price),
		}
	default:
		v = View{Kind: ViewBlank}
	}
	v.Price = s.Price
	if s.Connection == StatusError {
		v.ErrorBanner = errorBannerText
	}
	return v
}
