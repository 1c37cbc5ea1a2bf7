package loan

import (
	"encoding/json"
	"time"

	"github.com/xraph/loansign/id"
)

// DefaultOfferTTL is how long an offer stays acceptable.
const DefaultOfferTTL = 5 * time.Minute

// Offer is a proposed loan waiting for the borrower's answer. The
// wrapped loan is fully formed but inert until accepted; a declined or
// expired offer is simply discarded.
type Offer struct {
	id     id.OfferID
	loan   *Loan
	expiry time.Time
}

// NewOffer wraps a proposed loan with an expiry ttl from now.
func NewOffer(l *Loan, ttl time.Duration) *Offer {
	return &Offer{
		id:     id.NewOfferID(),
		loan:   l,
		expiry: time.Now().UTC().Add(ttl),
	}
}

// ID returns the offer identifier.
func (o *Offer) ID() id.OfferID { return o.id }

// Loan returns the proposed loan.
func (o *Offer) Loan() *Loan { return o.loan }

// Expiry returns when the offer lapses.
func (o *Offer) Expiry() time.Time { return o.expiry }

// Expired reports whether the offer has lapsed as of now.
func (o *Offer) Expired(now time.Time) bool {
	return now.After(o.expiry)
}

type offerJSON struct {
	ID     id.OfferID `json:"id"`
	Loan   *Loan      `json:"loan"`
	Expiry time.Time  `json:"expiry"`
}

// MarshalJSON implements json.Marshaler.
func (o *Offer) MarshalJSON() ([]byte, error) {
	return json.Marshal(offerJSON{ID: o.id, Loan: o.loan, Expiry: o.expiry})
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Offer) UnmarshalJSON(data []byte) error {
	var raw offerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.id = raw.ID
	o.loan = raw.Loan
	o.expiry = raw.Expiry
	return nil
}
