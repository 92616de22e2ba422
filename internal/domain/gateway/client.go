package gateway

// Menu is a structured keyboard layout: rows of button labels.
type Menu [][]string

// Client defines the outbound side of the messaging gateway. The core
// produces these commands and leaves delivery, retries and presentation to
// the transport adapter. A failed send must never roll back a store write
// that preceded it.
type Client interface {
	SendText(recipientID int64, text string) error
	SendImage(recipientID int64, image []byte, caption string) error
	SendMenu(recipientID int64, text string, menu Menu) error
}
