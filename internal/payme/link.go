package payme

import (
	"encoding/base64"
	"fmt"

	"exampay/internal/config"
)

const (
	checkoutHost     = "https://checkout.paycom.uz"
	checkoutTestHost = "https://checkout.test.paycom.uz"
)

// CheckoutLink builds the opaque checkout URL the browser is redirected to:
// merchant id, order id and amount (already in tiyin) are packed into a
// semicolon-separated parameter string and base64-encoded into the path.
// Pure function, no I/O.
func CheckoutLink(cfg config.PaymeConfig, orderID, amount int64) string {
	params := fmt.Sprintf("m=%s;ac.order_id=%d;a=%d", cfg.MerchantID, orderID, amount)
	if cfg.CallbackURL != "" {
		params += ";c=" + cfg.CallbackURL
	}

	host := checkoutHost
	if cfg.IsTestMode {
		host = checkoutTestHost
	}

	return host + "/" + base64.StdEncoding.EncodeToString([]byte(params))
}
