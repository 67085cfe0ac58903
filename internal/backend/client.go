package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tillworks/tillprint-core/internal/printer"
	"github.com/tillworks/tillprint-core/internal/settings"
	"github.com/tillworks/tillprint-core/internal/zone"
)

const defaultRequestTimeout = 15 * time.Second

// Client is the REST consumer for the tenant backend.
//
// All requests carry the terminal's API key as a bearer token and are
// scoped to the terminal's store location where the backend requires it.
// The client holds no mutable state beyond the http.Client connection
// pool and is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	locationID string
	deviceID   string
	httpClient *http.Client
}

// Config carries the knobs for constructing a Client.
type Config struct {
	BaseURL    string
	APIKey     string
	LocationID string
	DeviceID   string
	Timeout    time.Duration
}

// NewClient creates a backend client.
//
// Parameters:
//   - cfg: Connection settings; Timeout falls back to a 15s default
//
// Returns:
//   - *Client: Ready for use, no connection is established up front
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		locationID: cfg.LocationID,
		deviceID:   cfg.DeviceID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// do issues one JSON request and decodes the response body into out
// (skipped when out is nil). Transport-level failures map to
// ErrUnavailable; HTTP statuses map to the package sentinels.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		drain(resp.Body)
		return fmt.Errorf("%w: %s %s", ErrUnauthorized, method, path)
	case resp.StatusCode == http.StatusNotFound:
		drain(resp.Body)
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		drain(resp.Body)
		return fmt.Errorf("%w: %s %s: HTTP %d", ErrBadStatus, method, path, resp.StatusCode)
	}

	if out == nil {
		drain(resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// drain consumes the remaining body to allow connection reuse.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
}

// ListPrinters returns all printers for the terminal's location.
func (c *Client) ListPrinters(ctx context.Context) ([]printer.Printer, error) {
	var wire []printerWire
	path := "/printers?location=" + url.QueryEscape(c.locationID)
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	printers := make([]printer.Printer, len(wire))
	for i, w := range wire {
		printers[i] = printerFromWire(w)
	}
	return printers, nil
}

// CreatePrinter registers a printer with the backend and returns the
// stored record (with server-assigned fields).
func (c *Client) CreatePrinter(ctx context.Context, p printer.Printer) (printer.Printer, error) {
	var out printerWire
	if err := c.do(ctx, http.MethodPost, "/printers", printerToWire(p), &out); err != nil {
		return printer.Printer{}, err
	}
	return printerFromWire(out), nil
}

// UpdatePrinter patches an existing printer record.
func (c *Client) UpdatePrinter(ctx context.Context, p printer.Printer) (printer.Printer, error) {
	var out printerWire
	path := "/printers/" + url.PathEscape(p.ID)
	if err := c.do(ctx, http.MethodPatch, path, printerToWire(p), &out); err != nil {
		return printer.Printer{}, err
	}
	return printerFromWire(out), nil
}

// DeletePrinter removes a printer record from the backend.
func (c *Client) DeletePrinter(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/printers/"+url.PathEscape(id), nil, nil)
}

// ListZones returns all kitchen zones for the terminal's location.
func (c *Client) ListZones(ctx context.Context) ([]zone.KitchenZone, error) {
	var wire []zoneWire
	path := "/kitchen-zones?location=" + url.QueryEscape(c.locationID)
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	zones := make([]zone.KitchenZone, len(wire))
	for i, w := range wire {
		zones[i] = zoneFromWire(w)
	}
	return zones, nil
}

// CreateZone registers a kitchen zone and returns the stored record.
func (c *Client) CreateZone(ctx context.Context, z zone.KitchenZone) (zone.KitchenZone, error) {
	var out zoneWire
	if err := c.do(ctx, http.MethodPost, "/kitchen-zones", zoneToWire(z), &out); err != nil {
		return zone.KitchenZone{}, err
	}
	return zoneFromWire(out), nil
}

// UpdateZone patches an existing kitchen zone.
func (c *Client) UpdateZone(ctx context.Context, z zone.KitchenZone) (zone.KitchenZone, error) {
	var out zoneWire
	path := "/kitchen-zones/" + url.PathEscape(z.ID)
	if err := c.do(ctx, http.MethodPatch, path, zoneToWire(z), &out); err != nil {
		return zone.KitchenZone{}, err
	}
	return zoneFromWire(out), nil
}

// DeleteZone removes a kitchen zone from the backend.
func (c *Client) DeleteZone(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/kitchen-zones/"+url.PathEscape(id), nil, nil)
}

// GlobalSettings fetches the tenant-wide defaults.
func (c *Client) GlobalSettings(ctx context.Context) (settings.GlobalSettings, error) {
	var out settings.GlobalSettings
	if err := c.do(ctx, http.MethodGet, "/global-settings", nil, &out); err != nil {
		return settings.GlobalSettings{}, err
	}
	return out, nil
}

// StoreLocation fetches the location record, including its settings
// override layer.
func (c *Client) StoreLocation(ctx context.Context) (settings.Overrides, error) {
	var out storeLocationWire
	path := "/store-locations/" + url.PathEscape(c.locationID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return settings.Overrides{}, err
	}
	return out.WebOrderSettings.Overrides, nil
}

// UpdateLocationOverrides patches the location's override layer. Fields
// left nil in o are cleared on the backend, matching the sparse-layer
// semantics of resolution.
func (c *Client) UpdateLocationOverrides(ctx context.Context, o settings.Overrides) error {
	var patch storeLocationPatch
	patch.WebOrderSettings.Overrides = o
	path := "/store-locations/" + url.PathEscape(c.locationID)
	return c.do(ctx, http.MethodPatch, path, patch, nil)
}

// TerminalRegistration fetches this terminal's pairing record.
func (c *Client) TerminalRegistration(ctx context.Context) (settings.TerminalRegistration, error) {
	var out settings.TerminalRegistration
	path := "/settings/terminal-registrations/" + url.PathEscape(c.deviceID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return settings.TerminalRegistration{}, err
	}
	return out, nil
}

// RegisterTerminal creates or replaces this terminal's pairing record.
func (c *Client) RegisterTerminal(ctx context.Context, reg settings.TerminalRegistration) error {
	path := "/settings/terminal-registrations/" + url.PathEscape(c.deviceID)
	return c.do(ctx, http.MethodPost, path, reg, nil)
}

// Categories fetches the category tree as child→parent links.
func (c *Client) Categories(ctx context.Context) (zone.CategoryTree, error) {
	var wire []categoryWire
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &wire); err != nil {
		return nil, err
	}
	return categoryTreeFromWire(wire), nil
}

// FetchSnapshot assembles a complete configuration snapshot from the
// backend. The fetch is all-or-nothing: any individual request failing
// fails the whole snapshot, so a partially fetched bundle is never
// observable downstream.
func (c *Client) FetchSnapshot(ctx context.Context) (*settings.Snapshot, error) {
	global, err := c.GlobalSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching global settings: %w", err)
	}

	overrides, err := c.StoreLocation(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching location overrides: %w", err)
	}

	reg, err := c.TerminalRegistration(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching terminal registration: %w", err)
	}

	printers, err := c.ListPrinters(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching printers: %w", err)
	}

	zones, err := c.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching kitchen zones: %w", err)
	}

	categories, err := c.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}

	return &settings.Snapshot{
		Global:            global,
		LocationOverrides: overrides,
		Registration:      reg,
		Printers:          printers,
		Zones:             zones,
		Categories:        categories,
	}, nil
}
