package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/tillworks/tillprint-core/internal/order"
)

// Ticket layout constants for 80mm ESC/POS printers.
const (
	ticketWidth = 42
	timeLayout  = "15:04 02/01/2006"
)

// ESC/POS control sequences. The renderer emits plain text between them,
// so tickets stay readable when written to a file during tests.
var (
	escInit      = []byte{0x1b, 0x40}             // initialize
	escBoldOn    = []byte{0x1b, 0x45, 0x01}       // emphasis on
	escBoldOff   = []byte{0x1b, 0x45, 0x00}       // emphasis off
	escDoubleOn  = []byte{0x1d, 0x21, 0x11}       // double width+height
	escDoubleOff = []byte{0x1d, 0x21, 0x00}       // normal size
	escCut       = []byte{0x1d, 0x56, 0x41, 0x00} // feed and partial cut
)

// KitchenTicket is the input for one kitchen printer's ticket: only the
// items routed to that printer, never the full order by default.
type KitchenTicket struct {
	Order     order.Order
	ZoneNames []string
	Items     []order.Item
}

// RenderKitchenTicket renders one kitchen ticket as ESC/POS bytes.
func RenderKitchenTicket(t KitchenTicket) []byte {
	var b strings.Builder

	b.Write(escInit)
	b.Write(escDoubleOn)
	b.WriteString(centerLine(strings.Join(t.ZoneNames, " / ")))
	b.WriteString("\n")
	b.Write(escDoubleOff)

	b.Write(escBoldOn)
	b.WriteString(fmt.Sprintf("Order %s", t.Order.Number))
	if t.Order.TableName != "" {
		b.WriteString(fmt.Sprintf("  Table %s", t.Order.TableName))
	}
	b.WriteString("\n")
	b.Write(escBoldOff)
	b.WriteString(ticketTime(t.Order.CompletedAt))
	b.WriteString("\n")
	b.WriteString(rule())

	for _, item := range t.Items {
		b.Write(escBoldOn)
		b.WriteString(fmt.Sprintf("%dx %s\n", item.Quantity, item.Name))
		b.Write(escBoldOff)
		if item.Notes != "" {
			b.WriteString(fmt.Sprintf("   * %s\n", item.Notes))
		}
	}

	b.WriteString(rule())
	b.WriteString("\n\n")
	b.Write(escCut)
	return []byte(b.String())
}

// ReceiptTicket is the input for a receipt printer: always the full order.
type ReceiptTicket struct {
	Order  order.Order
	Footer string
}

// RenderReceipt renders a customer receipt as ESC/POS bytes.
func RenderReceipt(t ReceiptTicket) []byte {
	var b strings.Builder

	b.Write(escInit)
	b.Write(escBoldOn)
	b.WriteString(centerLine(fmt.Sprintf("Order %s", t.Order.Number)))
	b.WriteString("\n")
	b.Write(escBoldOff)
	if t.Order.TableName != "" {
		b.WriteString(centerLine("Table " + t.Order.TableName))
		b.WriteString("\n")
	}
	b.WriteString(ticketTime(t.Order.CompletedAt))
	b.WriteString("\n")
	b.WriteString(rule())

	for _, item := range t.Order.Items {
		b.WriteString(fmt.Sprintf("%dx %s\n", item.Quantity, item.Name))
	}

	b.WriteString(rule())
	if t.Footer != "" {
		b.WriteString(centerLine(t.Footer))
		b.WriteString("\n")
	}
	b.WriteString("\n\n")
	b.Write(escCut)
	return []byte(b.String())
}

func centerLine(s string) string {
	if len(s) >= ticketWidth {
		return s
	}
	pad := (ticketWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func rule() string {
	return strings.Repeat("-", ticketWidth) + "\n"
}

func ticketTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Local().Format(timeLayout)
}
