// Package sfs is a client for the SFSControl REST API of Spaceflight Simulator.
//
// The API groups share one HTTPClient:
//
//	c := sfs.New(sfs.WithHost("127.0.0.1"), sfs.WithPort(27772))
//	alt, err := c.Values.RocketAltitude(ctx, sfs.Current)
//	_, err = c.Control.SetThrottle(ctx, 1, sfs.Current)
//
// Responses are passed through as decoded JSON (Object, []Object, any).
package sfs

import (
	"context"
)

// Client composes the API groups over a single transport.
type Client struct {
	HTTP    *HTTPClient
	Control *ControlAPI
	Info    *InfoAPI
	Values  *ValuesAPI
	Calc    *CalcAPI
	Draw    *DrawAPI
}

// New creates a Client and, unless WithoutWarmup is given, requests /version once.
// Warm-up failures are logged at debug level and otherwise ignored.
func New(opts ...Option) *Client {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	h := newHTTPClient(s)
	info := NewInfoAPI(h)
	c := &Client{
		HTTP:    h,
		Control: NewControlAPI(h),
		Info:    info,
		Values:  NewValuesAPI(info),
		Calc:    NewCalcAPI(info),
		Draw:    NewDrawAPI(h),
	}

	if s.warmup {
		if _, err := info.Version(context.Background()); err != nil {
			h.logger.Debug("sfs warmup failed", "url", h.BaseURL(), "error", err)
		}
	}
	return c
}

func (c *Client) Host() string { return c.HTTP.Host }

func (c *Client) SetHost(host string) { c.HTTP.Host = host }

func (c *Client) Port() int { return c.HTTP.Port }

func (c *Client) SetPort(port int) { c.HTTP.Port = port }

func (c *Client) BaseURL() string { return c.HTTP.BaseURL() }

// Screenshot returns the current game frame as image bytes.
func (c *Client) Screenshot(ctx context.Context) ([]byte, error) {
	return c.HTTP.Screenshot(ctx)
}

// Invoke forwards a loosely spelled control method to ControlAPI.Invoke.
func (c *Client) Invoke(ctx context.Context, name string, args ...any) (any, error) {
	return c.Control.Invoke(ctx, name, args...)
}
