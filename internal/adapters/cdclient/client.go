// Package cdclient is a small ContentDirectory SOAP client used by the
// hearthctl CLI to exercise a running control server.
package cdclient

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const serviceType = "urn:schemas-upnp-org:service:ContentDirectory:1"

// Options configures the client.
type Options struct {
	Endpoint string
	Timeout  time.Duration
}

// Client talks to one ContentDirectory control endpoint.
type Client struct {
	http     *http.Client
	endpoint string
}

// New creates a client for the given control endpoint.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, errors.New("endpoint required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Client{
		http:     &http.Client{Timeout: opts.Timeout},
		endpoint: opts.Endpoint,
	}, nil
}

// Object is one entry of a browse or search result.
type Object struct {
	ID         string
	ParentID   string
	Title      string
	Class      string
	Container  bool
	ChildCount int64
	URL        string
}

// Result is a decoded enumeration response.
type Result struct {
	Objects        []Object
	NumberReturned int64
	TotalMatches   int64
	UpdateID       uint64
}

// Browse runs a Browse action against the endpoint.
func (c *Client) Browse(ctx context.Context, objectID string, flag string, start int64, count int64) (Result, error) {
	args := []soapArg{
		{"ObjectID", objectID},
		{"BrowseFlag", flag},
		{"Filter", "*"},
		{"StartingIndex", strconv.FormatInt(start, 10)},
		{"RequestedCount", strconv.FormatInt(count, 10)},
		{"SortCriteria", ""},
	}
	body, err := c.call(ctx, "Browse", args)
	if err != nil {
		return Result{}, err
	}
	return parseEnumeration(body, "BrowseResponse")
}

// Search runs a Search action against the endpoint.
func (c *Client) Search(ctx context.Context, containerID string, criteria string, start int64, count int64) (Result, error) {
	args := []soapArg{
		{"ContainerID", containerID},
		{"SearchCriteria", criteria},
		{"Filter", "*"},
		{"StartingIndex", strconv.FormatInt(start, 10)},
		{"RequestedCount", strconv.FormatInt(count, 10)},
		{"SortCriteria", ""},
	}
	body, err := c.call(ctx, "Search", args)
	if err != nil {
		return Result{}, err
	}
	return parseEnumeration(body, "SearchResponse")
}

// SetBookmark stores a playback position in seconds for an object.
func (c *Client) SetBookmark(ctx context.Context, objectID string, posSecond int64) error {
	args := []soapArg{
		{"ObjectID", objectID},
		{"PosSecond", strconv.FormatInt(posSecond, 10)},
	}
	_, err := c.call(ctx, "X_SetBookmark", args)
	return err
}

// SystemUpdateID reads the server's current update counter.
func (c *Client) SystemUpdateID(ctx context.Context) (uint64, error) {
	body, err := c.call(ctx, "GetSystemUpdateID", nil)
	if err != nil {
		return 0, err
	}
	var env struct {
		Body struct {
			Response struct {
				ID string `xml:"Id"`
			} `xml:"GetSystemUpdateIDResponse"`
		} `xml:"Body"`
	}
	if err := xml.Unmarshal(body, &env); err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(env.Body.Response.ID), 10, 64)
}

type soapArg struct {
	Name  string
	Value string
}

func (c *Client) call(ctx context.Context, action string, args []soapArg) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0"?>`)
	buf.WriteString(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">`)
	buf.WriteString(`<s:Body><u:` + action + ` xmlns:u="` + serviceType + `">`)
	for _, arg := range args {
		buf.WriteString(`<` + arg.Name + `>` + xmlEscape(arg.Value) + `</` + arg.Name + `>`)
	}
	buf.WriteString(`</u:` + action + `></s:Body></s:Envelope>`)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPACTION", `"`+serviceType+`#`+action+`"`)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if fault := parseFault(body); fault != nil {
		return nil, fault
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d", action, resp.StatusCode)
	}
	return body, nil
}

// UPnPError is a decoded SOAP fault detail.
type UPnPError struct {
	Code        int
	Description string
}

func (e *UPnPError) Error() string {
	return fmt.Sprintf("upnp error %d: %s", e.Code, e.Description)
}

func parseFault(body []byte) *UPnPError {
	var env struct {
		Body struct {
			Fault *struct {
				Detail struct {
					UPnPError struct {
						Code        int    `xml:"errorCode"`
						Description string `xml:"errorDescription"`
					} `xml:"UPnPError"`
				} `xml:"detail"`
			} `xml:"Fault"`
		} `xml:"Body"`
	}
	if err := xml.Unmarshal(body, &env); err != nil || env.Body.Fault == nil {
		return nil
	}
	return &UPnPError{
		Code:        env.Body.Fault.Detail.UPnPError.Code,
		Description: env.Body.Fault.Detail.UPnPError.Description,
	}
}

func parseEnumeration(body []byte, element string) (Result, error) {
	var env struct {
		Body struct {
			Inner struct {
				XMLName        xml.Name
				Result         string `xml:"Result"`
				NumberReturned int64  `xml:"NumberReturned"`
				TotalMatches   int64  `xml:"TotalMatches"`
				UpdateID       uint64 `xml:"UpdateID"`
			} `xml:",any"`
		} `xml:"Body"`
	}
	if err := xml.Unmarshal(body, &env); err != nil {
		return Result{}, err
	}
	if env.Body.Inner.XMLName.Local != element {
		return Result{}, fmt.Errorf("unexpected response element %q", env.Body.Inner.XMLName.Local)
	}

	objects, err := parseDIDL(env.Body.Inner.Result)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Objects:        objects,
		NumberReturned: env.Body.Inner.NumberReturned,
		TotalMatches:   env.Body.Inner.TotalMatches,
		UpdateID:       env.Body.Inner.UpdateID,
	}, nil
}

type didlEntry struct {
	ID         string `xml:"id,attr"`
	ParentID   string `xml:"parentID,attr"`
	ChildCount int64  `xml:"childCount,attr"`
	Title      string `xml:"title"`
	Class      string `xml:"class"`
	Res        []struct {
		URL string `xml:",chardata"`
	} `xml:"res"`
}

func parseDIDL(fragment string) ([]Object, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, nil
	}
	var doc struct {
		Containers []didlEntry `xml:"container"`
		Items      []didlEntry `xml:"item"`
	}
	if err := xml.Unmarshal([]byte(fragment), &doc); err != nil {
		return nil, fmt.Errorf("parse didl: %w", err)
	}

	objects := make([]Object, 0, len(doc.Containers)+len(doc.Items))
	for _, c := range doc.Containers {
		objects = append(objects, Object{
			ID:         c.ID,
			ParentID:   c.ParentID,
			Title:      c.Title,
			Class:      c.Class,
			Container:  true,
			ChildCount: c.ChildCount,
		})
	}
	for _, i := range doc.Items {
		obj := Object{ID: i.ID, ParentID: i.ParentID, Title: i.Title, Class: i.Class}
		if len(i.Res) > 0 {
			obj.URL = strings.TrimSpace(i.Res[0].URL)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func xmlEscape(value string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(value))
	return buf.String()
}
