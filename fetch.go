package rettiwt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/url"
	"strconv"
)

// Params holds the arguments of one resource call, keyed by Param* names.
type Params map[string]any

// Request is a fully built upstream request handed to a Transport.
type Request struct {
	Resource    Resource
	Method      string
	URL         string
	ContentType string
	Body        []byte
	// Credential is forwarded verbatim; empty means guest access.
	Credential string
}

// Response is the raw upstream answer.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// Transport performs network calls. Implementations own retries, proxying and TLS.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Fetch validates p against r's descriptor, sends exactly one request through the
// transport and returns the raw response body.
func (c *Client) Fetch(ctx context.Context, r Resource, p Params) ([]byte, error) {
	desc, err := Describe(r)
	if err != nil {
		return nil, err
	}
	if err := desc.validate(p); err != nil {
		return nil, err
	}
	if desc.Auth && c.cfg.APIKey == "" {
		return nil, &Error{Kind: ErrAuthenticationRequired, Resource: r}
	}

	req, err := desc.request(p)
	if err != nil {
		return nil, err
	}
	req.Credential = c.cfg.APIKey

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		c.log.Debug("request failed", slog.String("resource", r.String()), slog.Any("error", err))
		return nil, &Error{Kind: ErrTransport, Resource: r, Err: err}
	}
	c.log.Debug("request done",
		slog.String("resource", r.String()),
		slog.String("method", req.Method),
		slog.Int("status", resp.Status))

	if resp.Status < 200 || resp.Status > 299 {
		e := &Error{Kind: ErrTransport, Resource: r, Status: resp.Status, Msg: truncateBytes(resp.Body, 200)}
		if ue, ok := firstUpstreamError(resp.Body); ok {
			e.Code, e.Msg = ue.Code, ue.Message
		}
		return nil, e
	}
	if len(bytes.TrimSpace(resp.Body)) > 0 && !json.Valid(resp.Body) {
		return nil, &Error{Kind: ErrTransport, Resource: r, Status: resp.Status, Msg: "invalid JSON: " + truncateBytes(resp.Body, 200)}
	}
	if ue, ok := firstUpstreamError(resp.Body); ok && !hasResponseData(resp.Body) {
		return nil, &Error{Kind: ErrTransport, Resource: r, Status: resp.Status, Code: ue.Code, Msg: ue.Message}
	}
	return resp.Body, nil
}

func (d Descriptor) validate(p Params) error {
	for _, name := range d.Required {
		v, ok := p[name]
		if !ok || !present(v) {
			return invalidArgument(d.Resource, "missing required parameter %q", name)
		}
	}
	for name, v := range p {
		if err := checkType(name, v); err != nil {
			return invalidArgument(d.Resource, "parameter %q: %v", name, err)
		}
	}
	if n, ok := p[ParamCount].(int); ok && n < 0 {
		return invalidArgument(d.Resource, "count must not be negative, got %d", n)
	}
	return nil
}

func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case []string:
		return len(x) > 0
	case []byte:
		return len(x) > 0
	case *TweetFilter:
		return x != nil
	}
	return true
}

func checkType(name string, v any) error {
	if v == nil {
		return nil
	}
	var ok bool
	switch name {
	case ParamID, ParamCursor, ParamText, ParamReplyTo, ParamQuote, ParamMediaID:
		_, ok = v.(string)
	case ParamCount, ParamSize:
		_, ok = v.(int)
	case ParamMediaIDs:
		_, ok = v.([]string)
	case ParamMedia:
		_, ok = v.([]byte)
	case ParamFilter:
		switch v.(type) {
		case TweetFilter, *TweetFilter:
			ok = true
		}
	default:
		return fmt.Errorf("unknown parameter")
	}
	if !ok {
		return fmt.Errorf("unexpected type %T", v)
	}
	return nil
}

// pageParams applies the count cap and the first-page count quirk.
func (d Descriptor) pageParams(p Params) Params {
	n, ok := p[ParamCount].(int)
	if !ok {
		return p
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	cursor, _ := p[ParamCursor].(string)
	switch {
	case d.MaxCount == 0, d.CountNeedsCursor && cursor == "":
		delete(out, ParamCount)
	case n > d.MaxCount:
		out[ParamCount] = d.MaxCount
	}
	return out
}

func (d Descriptor) request(p Params) (*Request, error) {
	req := &Request{Resource: d.Resource, Method: d.Method, URL: d.URL()}

	switch d.endpoint {
	case gqlQuery:
		v, _ := json.Marshal(d.vars(d.pageParams(p)))
		f, _ := json.Marshal(gqlFeatures())
		q := url.Values{}
		q.Set("variables", string(v))
		q.Set("features", string(f))
		req.URL += "?" + q.Encode()

	case gqlMutation:
		payload := map[string]any{
			"variables": d.vars(p),
			"queryId":   d.QueryID,
		}
		if d.features {
			payload["features"] = gqlFeatures()
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, invalidArgument(d.Resource, "encode variables: %v", err)
		}
		req.Body = body
		req.ContentType = "application/json"

	case restForm:
		form := url.Values{}
		for k, v := range d.vars(p) {
			form.Set(k, fmt.Sprint(v))
		}
		req.Body = []byte(form.Encode())
		req.ContentType = "application/x-www-form-urlencoded"

	case mediaUpload:
		return d.uploadRequest(req, p)
	}
	return req, nil
}

func (d Descriptor) uploadRequest(req *Request, p Params) (*Request, error) {
	q := url.Values{}
	q.Set("command", d.Operation)
	switch d.Resource {
	case MediaUploadInitialize:
		q.Set("total_bytes", strconv.Itoa(p[ParamSize].(int)))
	case MediaUploadAppend:
		q.Set("media_id", p[ParamMediaID].(string))
		q.Set("segment_index", "0")
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("media", "blob")
		if err != nil {
			return nil, invalidArgument(d.Resource, "multipart: %v", err)
		}
		if _, err := fw.Write(p[ParamMedia].([]byte)); err != nil {
			return nil, invalidArgument(d.Resource, "multipart: %v", err)
		}
		if err := mw.Close(); err != nil {
			return nil, invalidArgument(d.Resource, "multipart: %v", err)
		}
		req.Body = buf.Bytes()
		req.ContentType = mw.FormDataContentType()
	case MediaUploadFinalize:
		q.Set("media_id", p[ParamMediaID].(string))
	}
	req.URL += "?" + q.Encode()
	return req, nil
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// hasResponseData returns true if the JSON body contains a non-null "data" field.
func hasResponseData(body []byte) bool {
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return false
	}
	return len(probe.Data) > 0 && string(probe.Data) != "null"
}
