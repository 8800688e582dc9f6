package models

// Product is a catalog entity owned by the upstream backend. The storefront
// holds a read-only snapshot fetched at startup; prices are BRL centavos.
type Product struct {
	ID          int64  `json:"id"`
	DocumentID  string `json:"document_id,omitempty"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	OldPrice    int64  `json:"old_price,omitempty"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	Image       string `json:"image"`
	Featured    bool   `json:"featured"`
}

// Banner is a promotional hero banner from the upstream backend.
type Banner struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Highlight   string `json:"highlight"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// CartLine is one selected product with its quantity. At most one line exists
// per product ID within a cart; quantity never goes below 1.
type CartLine struct {
	ProductID int64  `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
}

// Subtotal returns price times quantity for the line.
func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// User is the authenticated identity record mirrored from the backend.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
	Blocked   bool   `json:"blocked"`
	FullName  string `json:"full_name,omitempty"`
	TaxID     string `json:"cpf,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// Payment methods accepted at checkout
const (
	PaymentMethodPixBoleto  = "pix_boleto"
	PaymentMethodCreditCard = "credit_card"
)

// ValidPaymentMethod reports whether m names a supported payment method.
func ValidPaymentMethod(m string) bool {
	return m == PaymentMethodPixBoleto || m == PaymentMethodCreditCard
}

// OrderSummary is a past order as returned by the upstream history listing.
type OrderSummary struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	CreatedAt string `json:"created_at"`
}
