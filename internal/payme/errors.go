package payme

import "fmt"

// Gateway-facing error codes. The business codes (-310xx) are fixed by the
// merchant protocol; the -32xxx range mirrors JSON-RPC transport errors.
const (
	CodeTransactionNotFound = -31001
	CodeUnableToPerform     = -31008
	CodeOrderNotFound       = -31050
	CodeAlreadyPerformed    = -31099
	CodeInternal            = -32400
	CodeUnauthorized        = -32504
	CodeMethodNotFound      = -32601
	CodeParseError          = -32700
)

// Message is the localized message set the gateway displays to payers.
type Message struct {
	Ru string `json:"ru"`
	Uz string `json:"uz"`
	En string `json:"en"`
}

// Error is the structured error carried in the response envelope.
type Error struct {
	Code    int     `json:"code"`
	Message Message `json:"message"`
	Data    string  `json:"data,omitempty"` // offending field, when applicable
}

func (e *Error) Error() string {
	return fmt.Sprintf("payme: %s (%d)", e.Message.En, e.Code)
}

// Shared instances are never mutated.
var (
	ErrTransactionNotFound = &Error{
		Code: CodeTransactionNotFound,
		Message: Message{
			Ru: "Транзакция не найдена",
			Uz: "Tranzaksiya topilmadi",
			En: "Transaction not found",
		},
	}
	// Same numeric code as ErrTransactionNotFound, distinct message and data
	// field — the protocol reuses -31001 for amount mismatches.
	ErrInvalidAmount = &Error{
		Code: CodeTransactionNotFound,
		Message: Message{
			Ru: "Неверная сумма",
			Uz: "Noto'g'ri summa",
			En: "Invalid amount",
		},
		Data: "amount",
	}
	ErrOrderNotFound = &Error{
		Code: CodeOrderNotFound,
		Message: Message{
			Ru: "Заказ не найден",
			Uz: "Buyurtma topilmadi",
			En: "Order not found",
		},
		Data: "order_id",
	}
	ErrUnableToPerform = &Error{
		Code: CodeUnableToPerform,
		Message: Message{
			Ru: "Невозможно выполнить операцию",
			Uz: "Amalni bajarib bo'lmaydi",
			En: "Unable to perform operation",
		},
	}
	ErrAlreadyPerformed = &Error{
		Code: CodeAlreadyPerformed,
		Message: Message{
			Ru: "Заказ уже оплачен",
			Uz: "Buyurtma allaqachon to'langan",
			En: "Order already paid",
		},
		Data: "order_id",
	}
	ErrInternal = &Error{
		Code: CodeInternal,
		Message: Message{
			Ru: "Внутренняя ошибка сервера",
			Uz: "Serverning ichki xatosi",
			En: "Internal server error",
		},
	}
	ErrUnauthorized = &Error{
		Code: CodeUnauthorized,
		Message: Message{
			Ru: "Недостаточно привилегий для выполнения метода",
			Uz: "Metodni bajarish uchun huquq yetarli emas",
			En: "Insufficient privileges to perform the method",
		},
	}
	ErrMethodNotFound = &Error{
		Code: CodeMethodNotFound,
		Message: Message{
			Ru: "Метод не найден",
			Uz: "Metod topilmadi",
			En: "Method not found",
		},
	}
	ErrParse = &Error{
		Code: CodeParseError,
		Message: Message{
			Ru: "Ошибка разбора запроса",
			Uz: "So'rovni o'qishda xatolik",
			En: "Failed to parse request",
		},
	}
)
