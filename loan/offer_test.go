package loan

import (
	"testing"
	"time"
)

func TestOfferExpiry(t *testing.T) {
	l := newTestLoan(t, "150", 20)
	o := NewOffer(l, DefaultOfferTTL)

	if o.Loan() != l {
		t.Fatal("Loan() does not return the wrapped loan")
	}
	if o.Expired(time.Now()) {
		t.Error("fresh offer reports expired")
	}
	if !o.Expired(time.Now().Add(DefaultOfferTTL + time.Second)) {
		t.Error("lapsed offer not expired")
	}
	if o.ID().IsNil() {
		t.Error("offer has no id")
	}
}
