package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ManuelReschke/merchantgate/internal/pkg/apperror"
)

// Envelope is one emission of one domain occurrence. Every call to
// NewEnvelope mints a new ID, even for the same underlying occurrence.
type Envelope struct {
	ID      string
	Type    EventType
	Created int64
	Data    Data
}

// NewEnvelope checks that data belongs to eventType's object family.
func NewEnvelope(eventType EventType, data Data, now time.Time) (Envelope, error) {
	if !eventType.Known() {
		return Envelope{}, apperror.Validationf("unknown event type %q", eventType)
	}
	if data == nil {
		return Envelope{}, apperror.Validation("event data is required")
	}
	if data.ObjectType() != eventType.Object() {
		return Envelope{}, apperror.Validationf("event %s cannot carry a %s object", eventType, data.ObjectType())
	}
	return Envelope{
		ID:      uuid.NewString(),
		Type:    eventType,
		Created: now.Unix(),
		Data:    data,
	}, nil
}

type wireEnvelope struct {
	ID      string    `json:"id"`
	Object  string    `json:"object"`
	Type    EventType `json:"type"`
	Created int64     `json:"created"`
	Data    wireData  `json:"data"`
}

type wireData struct {
	Object json.RawMessage `json:"object"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	obj, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEnvelope{
		ID:      e.ID,
		Object:  "event",
		Type:    e.Type,
		Created: e.Created,
		Data:    wireData{Object: obj},
	})
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if !w.Type.Known() {
		return fmt.Errorf("unknown event type %q", w.Type)
	}

	var data Data
	switch w.Type.Object() {
	case ObjectPaymentIntent:
		var v PaymentIntent
		if err := json.Unmarshal(w.Data.Object, &v); err != nil {
			return err
		}
		data = v
	case ObjectCharge:
		var v Charge
		if err := json.Unmarshal(w.Data.Object, &v); err != nil {
			return err
		}
		data = v
	case ObjectRefund:
		var v Refund
		if err := json.Unmarshal(w.Data.Object, &v); err != nil {
			return err
		}
		data = v
	case ObjectCustomer:
		var v Customer
		if err := json.Unmarshal(w.Data.Object, &v); err != nil {
			return err
		}
		data = v
	default:
		return fmt.Errorf("event type %q has no payload variant", w.Type)
	}

	*e = Envelope{ID: w.ID, Type: w.Type, Created: w.Created, Data: data}
	return nil
}
