package hardware

import "encoding/json"

// Command types understood by the hardware agent.
const (
	CmdDiscoverPrinters   = "discover-printers"
	CmdDiscoverReaders    = "discover-readers"
	CmdTestNetworkPrinter = "test-network-printer"
	CmdPrintReceipt       = "print-receipt"
)

// Command is one request to the hardware agent. Payload is command-specific
// and may be nil for commands without parameters.
type Command struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// envelope is the wire form published to the command topic. The agent
// echoes RequestID on the response topic.
type envelope struct {
	RequestID string          `json:"request_id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Response is the agent's answer to one command.
type Response struct {
	RequestID string          `json:"request_id"`
	OK        bool            `json:"ok"`
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// DiscoveredPrinter is one USB printer reported by the agent.
type DiscoveredPrinter struct {
	Name      string `json:"name"`
	VendorID  string `json:"vendor_id"`
	ProductID string `json:"product_id"`
}

// DiscoveredReader is one card reader reported by the agent.
type DiscoveredReader struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TestNetworkPrinterRequest asks the agent to probe a network printer.
type TestNetworkPrinterRequest struct {
	IPAddress string `json:"ip_address"`
	Port      int    `json:"port,omitempty"`
}

// TestResult is the outcome of a printer connectivity test.
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// PrintRequest carries one rendered ticket to the agent.
type PrintRequest struct {
	PrinterName   string `json:"printer"`
	Data          []byte `json:"data"`
	IsTransaction bool   `json:"is_transaction"`
}
