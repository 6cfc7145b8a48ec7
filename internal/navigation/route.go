// Package navigation defines the client screens as typed routes. Handlers use
// it to tell the client which screen comes next, and the back stack models
// the client's push/pop/pop-up-to history.
package navigation

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrUnknownRoute is returned by Parse for paths that match no route.
var ErrUnknownRoute = errors.New("unknown route")

// Route is one navigable screen with its bound parameters.
type Route interface {
	// Name is the route template name, e.g. "payments".
	Name() string
	// Path renders the route with its escaped parameters.
	Path() string
}

// Parameterless screens.
type (
	Splash         struct{}
	Auth           struct{}
	Home           struct{}
	Explore        struct{}
	Profile        struct{}
	Settings       struct{}
	EditProfile    struct{}
	ChangePassword struct{}
	About          struct{}
	Contact        struct{}
	Onboarding     struct{}
	MyBookings     struct{}
	MyPayments     struct{}
	AllReceipts    struct{}
	UpcomingTrips  struct{}
)

func (Splash) Name() string         { return "splash" }
func (Auth) Name() string           { return "auth" }
func (Home) Name() string           { return "home" }
func (Explore) Name() string        { return "explore" }
func (Profile) Name() string        { return "profile" }
func (Settings) Name() string       { return "settings" }
func (EditProfile) Name() string    { return "edit_profile" }
func (ChangePassword) Name() string { return "change_password" }
func (About) Name() string          { return "about" }
func (Contact) Name() string        { return "contact" }
func (Onboarding) Name() string     { return "onboarding" }
func (MyBookings) Name() string     { return "myBookings" }
func (MyPayments) Name() string     { return "myPayments" }
func (AllReceipts) Name() string    { return "allReceipts" }
func (UpcomingTrips) Name() string  { return "upcomingTripsScreen" }

func (r Splash) Path() string         { return r.Name() }
func (r Auth) Path() string           { return r.Name() }
func (r Home) Path() string           { return r.Name() }
func (r Explore) Path() string        { return r.Name() }
func (r Profile) Path() string        { return r.Name() }
func (r Settings) Path() string       { return r.Name() }
func (r EditProfile) Path() string    { return r.Name() }
func (r ChangePassword) Path() string { return r.Name() }
func (r About) Path() string          { return r.Name() }
func (r Contact) Path() string        { return r.Name() }
func (r Onboarding) Path() string     { return r.Name() }
func (r MyBookings) Path() string     { return r.Name() }
func (r MyPayments) Path() string     { return r.Name() }
func (r AllReceipts) Path() string    { return r.Name() }
func (r UpcomingTrips) Path() string  { return r.Name() }

// Payments is the checkout screen for a booked destination.
type Payments struct {
	Destination string
	Amount      int
}

func (Payments) Name() string { return "payments" }

func (r Payments) Path() string {
	return join(r.Name(), r.Destination, strconv.Itoa(r.Amount))
}

// BookingConfirmation is shown after a booking is stored.
type BookingConfirmation struct {
	Destination string
}

func (BookingConfirmation) Name() string { return "bookingConfirmation" }

func (r BookingConfirmation) Path() string {
	return join(r.Name(), r.Destination)
}

// Receipt shows a single stored payment.
type Receipt struct {
	PaymentID string
}

func (Receipt) Name() string { return "receipt" }

func (r Receipt) Path() string {
	return join(r.Name(), r.PaymentID)
}

var staticRoutes = map[string]Route{}

func init() {
	for _, r := range []Route{
		Splash{}, Auth{}, Home{}, Explore{}, Profile{}, Settings{}, EditProfile{},
		ChangePassword{}, About{}, Contact{}, Onboarding{}, MyBookings{}, MyPayments{},
		AllReceipts{}, UpcomingTrips{},
	} {
		staticRoutes[r.Name()] = r
	}
}

// Parse is the inverse of Route.Path.
func Parse(path string) (Route, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	args := make([]string, 0, len(segments)-1)
	for _, s := range segments[1:] {
		v, err := url.PathUnescape(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
		}
		args = append(args, v)
	}

	name := segments[0]
	if r, ok := staticRoutes[name]; ok && len(args) == 0 {
		return r, nil
	}

	switch {
	case name == (Payments{}).Name() && len(args) == 2:
		amount, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid amount %q", ErrUnknownRoute, args[1])
		}
		return Payments{Destination: args[0], Amount: amount}, nil
	case name == (BookingConfirmation{}).Name() && len(args) == 1:
		return BookingConfirmation{Destination: args[0]}, nil
	case name == (Receipt{}).Name() && len(args) == 1:
		return Receipt{PaymentID: args[0]}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
}

func join(name string, args ...string) string {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range args {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(a))
	}
	return b.String()
}
