package payme

import "encoding/json"

// Request is the gateway's JSON-RPC-like call envelope. Params stay raw
// until the dispatch table picks the concrete parameter type.
type Request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	ID     int64           `json:"id"`
}

// Response carries exactly one meaningful field of Result/Error. Result is
// serialized without omitempty so the gateway always sees an explicit null
// alongside an error.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Result  interface{} `json:"result"`
	Error   *Error      `json:"error,omitempty"`
}

func OK(id int64, result interface{}) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

func Fail(id int64, err *Error) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: err}
}

// Account identifies the order being paid for. The gateway transports all
// account fields as strings.
type Account struct {
	OrderID string `json:"order_id"`
}

type CheckPerformParams struct {
	Amount  int64   `json:"amount"`
	Account Account `json:"account"`
}

type CreateParams struct {
	ID      string  `json:"id"`
	Time    int64   `json:"time"` // ms since epoch, gateway clock
	Amount  int64   `json:"amount"`
	Account Account `json:"account"`
}

type PerformParams struct {
	ID string `json:"id"`
}

type CancelParams struct {
	ID     string `json:"id"`
	Reason int    `json:"reason"`
}

type CheckParams struct {
	ID string `json:"id"`
}

type CheckPerformResult struct {
	Allow bool `json:"allow"`
}

type CreateResult struct {
	CreateTime  int64  `json:"create_time"`
	Transaction string `json:"transaction"`
	State       int    `json:"state"`
}

type PerformResult struct {
	Transaction string `json:"transaction"`
	PerformTime int64  `json:"perform_time"`
	State       int    `json:"state"`
}

type CancelResult struct {
	Transaction string `json:"transaction"`
	CancelTime  int64  `json:"cancel_time"`
	State       int    `json:"state"`
}

// CheckResult is the full record. Unset timestamps and reason marshal as
// null, never omitted.
type CheckResult struct {
	CreateTime  int64  `json:"create_time"`
	PerformTime *int64 `json:"perform_time"`
	CancelTime  *int64 `json:"cancel_time"`
	Transaction string `json:"transaction"`
	State       int    `json:"state"`
	Reason      *int   `json:"reason"`
}
