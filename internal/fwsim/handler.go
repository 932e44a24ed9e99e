package fwsim

import (
	"fmt"

	"github.com/pior/wifimib/mib"
)

// Handler answers requests against a Store.
type Handler struct {
	store    Store
	readOnly map[uint16]struct{}
}

// NewHandler returns a Handler serving store. SET requests touching any PSID
// in readOnly are refused.
func NewHandler(store Store, readOnly ...uint16) *Handler {
	h := &Handler{
		store:    store,
		readOnly: make(map[uint16]struct{}, len(readOnly)),
	}
	for _, psid := range readOnly {
		h.readOnly[psid] = struct{}{}
	}
	return h
}

// Handle builds the confirm for req.
//
// Malformed payloads and refusals are reported through the confirm status.
// An error means the store failed and the link should be dropped.
func (h *Handler) Handle(req *mib.Request) (*mib.Response, error) {
	resp := &mib.Response{Signal: req.Signal.Confirm(), Tag: req.Tag}

	switch req.Signal {
	case mib.SignalGetRequest:
		return h.handleGet(req, resp)
	case mib.SignalSetRequest:
		return h.handleSet(req, resp)
	case mib.SignalNoOpRequest:
		return resp, nil
	default:
		resp.Status = mib.StatusUnsupported
		return resp, nil
	}
}

// handleGet answers with the entries the store holds. Missing keys are
// omitted; the host notices them when matching the confirm. A confirm that
// would not fit in one frame is refused with an empty payload.
func (h *Handler) handleGet(req *mib.Request, resp *mib.Response) (*mib.Response, error) {
	keys, err := req.Keys()
	if err != nil {
		resp.Status = mib.StatusInvalidParameters
		return resp, nil
	}

	var buf mib.Buffer
	for _, k := range keys {
		v, ok, err := h.store.Get(k)
		if err != nil {
			return nil, fmt.Errorf("get %v: %w", k, err)
		}
		if !ok {
			continue
		}
		if err := buf.AppendEntry(k, v); err != nil {
			return nil, fmt.Errorf("encode %v: %w", k, err)
		}
		if buf.Len() > mib.MaxPayloadSize {
			resp.Status = mib.StatusInvalidParameters
			return resp, nil
		}
	}
	resp.Payload = buf.Bytes()
	return resp, nil
}

// handleSet validates every entry before applying any of them.
func (h *Handler) handleSet(req *mib.Request, resp *mib.Response) (*mib.Response, error) {
	entries, err := req.Entries()
	if err != nil {
		resp.Status = mib.StatusInvalidParameters
		return resp, nil
	}

	var rejected []mib.Key
	for _, e := range entries {
		if e.Value.IsNone() {
			resp.Status = mib.StatusInvalidParameters
			return resp, nil
		}
		if _, ro := h.readOnly[e.Key.PSID]; ro {
			rejected = append(rejected, e.Key)
		}
	}
	if len(rejected) > 0 {
		resp.Status = mib.StatusReadOnly
		resp.Payload = mib.EncodeGetList(rejected)
		return resp, nil
	}

	if err := h.store.Set(entries...); err != nil {
		return nil, fmt.Errorf("set: %w", err)
	}
	return resp, nil
}
