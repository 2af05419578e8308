// Package googlecal implements the calendar port against the Google
// Calendar API. Busy intervals come from the user's primary calendar;
// reservations are written back as all-day events.
package googlecal

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	corecal "github.com/pverdier/tripsched/core/calendar"
	"github.com/pverdier/tripsched/core/model"
	"github.com/pverdier/tripsched/infra/logger"
)

// Config defines the OAuth credentials and target calendar.
type Config struct {
	CalendarID   string `json:"calendar_id"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

// Client implements the calendar port using the Google Calendar API.
type Client struct {
	svc        *gcal.Service
	calendarID string
	log        logger.Logger
}

var _ corecal.Port = (*Client)(nil)

// TokenSource builds an oauth2 token source from the stored refresh token.
// The expiry is forced so the first call refreshes the access token.
func (c Config) TokenSource(ctx context.Context) oauth2.TokenSource {
	conf := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarScope},
	}
	return conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: c.RefreshToken,
		Expiry:       time.Now(),
	})
}

// New creates a calendar client authenticated via the refresh token in cfg.
func New(ctx context.Context, cfg Config, log logger.Logger) (*Client, error) {
	if cfg.RefreshToken == "" {
		return nil, fmt.Errorf("googlecal: refresh token is required")
	}
	return NewWithOptions(ctx, cfg, log, option.WithTokenSource(cfg.TokenSource(ctx)))
}

// NewWithOptions creates a client with explicit API client options. Tests use
// it to point the service at a local endpoint.
func NewWithOptions(ctx context.Context, cfg Config, log logger.Logger, opts ...option.ClientOption) (*Client, error) {
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("googlecal: create service: %w", err)
	}
	id := cfg.CalendarID
	if id == "" {
		id = "primary"
	}
	return &Client{svc: svc, calendarID: id, log: log}, nil
}

// Availability lists the calendar events in [from, to) and classifies them.
// Timed and opaque events are hard commitments; tentative or transparent
// entries are soft. All-day transparent events count as non-working days
// (holidays, closures) and reduce the time-off cost instead of blocking.
func (c *Client) Availability(ctx context.Context, from, to time.Time) (corecal.Availability, error) {
	call := c.svc.Events.List(c.calendarID).
		Context(ctx).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250)

	var av corecal.Availability
	pageToken := ""
	for {
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return corecal.Availability{}, mapError("list events", err)
		}
		for _, ev := range res.Items {
			if ev.Status == "cancelled" {
				continue
			}
			start, end, allDay, perr := eventSpan(ev)
			if perr != nil {
				c.log.Warnf("skipping event %s: %v", ev.Id, perr)
				continue
			}
			if allDay && ev.Transparency == "transparent" {
				for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
					av.NonWorking = append(av.NonWorking, d)
				}
				continue
			}
			av.Busy = append(av.Busy, model.BusyInterval{
				Start:   start,
				End:     end,
				Hard:    ev.Transparency != "transparent" && ev.Status != "tentative",
				Summary: ev.Summary,
			})
		}
		pageToken = res.NextPageToken
		if pageToken == "" {
			return av, nil
		}
	}
}

// CreateReservation inserts the reservation as an all-day event. The
// idempotency key is stored as a private extended property and checked
// first, so a retried commit returns the existing event instead of
// double-booking.
func (c *Client) CreateReservation(ctx context.Context, w model.DateWindow, d corecal.ReservationDetails) (string, error) {
	if d.IdempotencyKey != "" {
		existing, err := c.findByKey(ctx, d.IdempotencyKey)
		if err != nil {
			return "", err
		}
		if existing != "" {
			c.log.Infof("reservation %s already exists as event %s", d.IdempotencyKey, existing)
			return existing, nil
		}
	}

	ev := &gcal.Event{
		Summary:     d.Summary,
		Description: d.Description,
		Start:       &gcal.EventDateTime{Date: w.Start.Format("2006-01-02")},
		End:         &gcal.EventDateTime{Date: w.End.Format("2006-01-02")},
	}
	if d.IdempotencyKey != "" {
		ev.ExtendedProperties = &gcal.EventExtendedProperties{
			Private: map[string]string{"reservation_key": d.IdempotencyKey},
		}
	}
	created, err := c.svc.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", mapError("insert event", err)
	}
	return created.Id, nil
}

func (c *Client) findByKey(ctx context.Context, key string) (string, error) {
	res, err := c.svc.Events.List(c.calendarID).
		Context(ctx).
		PrivateExtendedProperty("reservation_key=" + key).
		MaxResults(1).
		Do()
	if err != nil {
		return "", mapError("lookup reservation", err)
	}
	if len(res.Items) == 0 {
		return "", nil
	}
	return res.Items[0].Id, nil
}

func eventSpan(ev *gcal.Event) (start, end time.Time, allDay bool, err error) {
	if ev.Start == nil || ev.End == nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event has no span")
	}
	if ev.Start.Date != "" {
		start, err = time.Parse("2006-01-02", ev.Start.Date)
		if err != nil {
			return
		}
		end, err = time.Parse("2006-01-02", ev.End.Date)
		return start, end, true, err
	}
	start, err = time.Parse(time.RFC3339, ev.Start.DateTime)
	if err != nil {
		return
	}
	end, err = time.Parse(time.RFC3339, ev.End.DateTime)
	return start, end, false, err
}

// mapError translates Google API failures into the port's error taxonomy.
func mapError(op string, err error) error {
	if gerr, ok := err.(*googleapi.Error); ok {
		switch {
		case gerr.Code == 401 || gerr.Code == 403:
			return fmt.Errorf("%s: %w", op, corecal.ErrUnauthenticated)
		case gerr.Code == 429:
			return fmt.Errorf("%s: %w", op, corecal.ErrRateLimited)
		case gerr.Code >= 500:
			return fmt.Errorf("%s: %w", op, corecal.ErrUnavailable)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, corecal.ErrUnavailable, err)
}
