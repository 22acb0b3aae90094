// Package manual records replies for platforms the CRM cannot deliver to
// directly. Staff send them by hand and the CRM keeps the audit trail.
package manual

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/acoustichub/crm/internal/channel"
)

const Type channel.ChannelType = channel.ChannelManual

// Adapter accepts every outbound message and assigns it a local id.
type Adapter struct {
	newID func() string
}

func NewAdapter() *Adapter {
	return &Adapter{newID: func() string { return uuid.NewString() }}
}

func (a *Adapter) Type() channel.ChannelType {
	return Type
}

func (a *Adapter) Descriptor() channel.Descriptor {
	return channel.Descriptor{
		Type:         Type,
		DisplayName:  "Manual",
		Capabilities: channel.Capabilities{Send: true},
	}
}

// Send returns a synthetic "out-<uuid>" id without contacting any platform.
func (a *Adapter) Send(_ context.Context, _ channel.Config, msg channel.OutboundMessage) (channel.SendResult, error) {
	if strings.TrimSpace(msg.Text) == "" {
		return channel.SendResult{}, fmt.Errorf("message is required")
	}
	return channel.SendResult{ExternalID: "out-" + a.newID()}, nil
}
