package checkout

import (
	"sync"

	"mataam/internal/cart"
	"mataam/internal/catalog"
)

// Step is the page of the checkout dialog.
type Step string

const (
	StepChoice   Step = "choice"
	StepDelivery Step = "delivery"
)

// Flow drives the checkout dialog for one cart. Finishing either branch
// clears the cart, closes the dialog and returns to StepChoice.
type Flow struct {
	Composer Composer
	Cart     *cart.Cart

	mu   sync.Mutex
	step Step
}

func NewFlow(c Composer, ct *cart.Cart) *Flow {
	return &Flow{Composer: c, Cart: ct, step: StepChoice}
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == "" {
		return StepChoice
	}
	return f.step
}

func (f *Flow) setStep(s Step) {
	f.mu.Lock()
	f.step = s
	f.mu.Unlock()
}

// Open shows the dialog on the choice page.
func (f *Flow) Open() {
	f.setStep(StepChoice)
	f.Cart.SetCheckoutOpen(true)
}

func (f *Flow) ChooseDelivery() { f.setStep(StepDelivery) }

func (f *Flow) Back() { f.setStep(StepChoice) }

// Close dismisses the dialog and keeps the cart.
func (f *Flow) Close() {
	f.Cart.SetCheckoutOpen(false)
	f.setStep(StepChoice)
}

// Takeaway composes a pickup order and resets the cart.
func (f *Flow) Takeaway() (Order, error) {
	return f.finish(nil)
}

// Deliver composes a delivery order to loc and resets the cart.
func (f *Flow) Deliver(loc catalog.DeliveryLocation) (Order, error) {
	return f.finish(&loc)
}

func (f *Flow) finish(loc *catalog.DeliveryLocation) (Order, error) {
	o, err := f.Composer.Compose(f.Cart, loc)
	if err != nil {
		return Order{}, err
	}
	f.Cart.Clear()
	f.Close()
	return o, nil
}
