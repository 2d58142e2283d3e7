package events

// ObjectType is the family of domain object carried in an event.
type ObjectType string

const (
	ObjectPaymentIntent ObjectType = "payment_intent"
	ObjectCharge        ObjectType = "charge"
	ObjectRefund        ObjectType = "refund"
	ObjectCustomer      ObjectType = "customer"
)

// Data is the snapshot carried by an event. The set of implementations is
// closed: PaymentIntent, Charge, Refund and Customer.
type Data interface {
	ObjectType() ObjectType
	sealed()
}

type PaymentIntent struct {
	ID               string            `json:"id"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Status           string            `json:"status"`
	CustomerID       string            `json:"customer_id,omitempty"`
	Description      string            `json:"description,omitempty"`
	LastPaymentError string            `json:"last_payment_error,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	CreatedAt        int64             `json:"created"`
}

type Charge struct {
	ID              string `json:"id"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int64  `json:"amount"`
	AmountRefunded  int64  `json:"amount_refunded"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
	FailureCode     string `json:"failure_code,omitempty"`
	FailureMessage  string `json:"failure_message,omitempty"`
	CreatedAt       int64  `json:"created"`
}

type Refund struct {
	ID        string `json:"id"`
	ChargeID  string `json:"charge_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt int64  `json:"created"`
}

type Customer struct {
	ID        string            `json:"id"`
	Email     string            `json:"email,omitempty"`
	Name      string            `json:"name,omitempty"`
	Phone     string            `json:"phone,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Deleted   bool              `json:"deleted,omitempty"`
	CreatedAt int64             `json:"created"`
}

func (PaymentIntent) ObjectType() ObjectType { return ObjectPaymentIntent }
func (Charge) ObjectType() ObjectType        { return ObjectCharge }
func (Refund) ObjectType() ObjectType        { return ObjectRefund }
func (Customer) ObjectType() ObjectType      { return ObjectCustomer }

func (PaymentIntent) sealed() {}
func (Charge) sealed()        {}
func (Refund) sealed()        {}
func (Customer) sealed()      {}
