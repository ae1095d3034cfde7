package relay

import (
	"context"
	"encoding/json"
)

// startPubSubListener feeds events published by other instances into
// PubSubCh.
func (h *Hub) startPubSubListener(ctx context.Context) {
	if h.Bus == nil {
		return
	}
	ch, err := h.Bus.Subscribe(ctx)
	if err != nil {
		h.log.Errorw("failed to subscribe to relay events, running single-instance", "error", err)
		return
	}
	if ch == nil {
		return
	}
	go func() {
		for payload := range ch {
			var env Envelope
			if err := json.Unmarshal(payload, &env); err != nil {
				h.log.Warnw("error unmarshalling relay event", "error", err)
				continue
			}
			select {
			case h.PubSubCh <- env:
			case <-ctx.Done():
				return
			}
		}
	}()
}
