package smpp

import (
	"strconv"
	"strings"
	"time"
)

// DeliveryReceipt is the parsed form of the standard delivery-receipt text carried in a
// deliver_sm's short_message when DeliverSM.IsDeliveryReceipt() is true. Parsing this text is a
// session-layer concern (handing the application a typed result instead of raw bytes); producing
// receipts and routing them is SMSC business logic and stays out of scope.
type DeliveryReceipt struct {
	MessageID  string
	Submitted  int
	Delivered  int
	SubmitDate time.Time
	DoneDate   time.Time
	Stat       string
	Err        string
	Text       string
}

const receiptDateLayout = "0601021504"

// ParseDeliveryReceipt parses the SMPP-standard "id:... sub:... dlvrd:... submit date:... done
// date:... stat:... err:... text:..." receipt body. Fields may appear in any order; unrecognized
// fields are ignored so vendor variants don't hard-fail the parse. Every value except text: ends
// at its first space; text: runs to the next recognized field or the end of the body.
func ParseDeliveryReceipt(body string) (DeliveryReceipt, bool) {
	var r DeliveryReceipt
	idx := strings.Index(body, "id:")
	if idx == -1 {
		return DeliveryReceipt{}, false
	}
	fields := []string{"id:", "sub:", "dlvrd:", "submit date:", "done date:", "stat:", "err:", "text:"}
	positions := make(map[string]int, len(fields))
	for _, f := range fields {
		if p := strings.Index(body, f); p != -1 {
			positions[f] = p
		}
	}
	extract := func(key string) (string, bool) {
		start, ok := positions[key]
		if !ok {
			return "", false
		}
		start += len(key)
		end := len(body)
		for _, f := range fields {
			if p, ok := positions[f]; ok && p > start-len(key) && p < end && p >= start {
				end = p
			}
		}
		v := strings.TrimSpace(body[start:end])
		if key != "text:" {
			if i := strings.IndexByte(v, ' '); i != -1 {
				v = v[:i]
			}
		}
		return v, true
	}

	if v, ok := extract("id:"); ok {
		r.MessageID = v
	} else {
		return DeliveryReceipt{}, false
	}
	if v, ok := extract("sub:"); ok {
		r.Submitted, _ = strconv.Atoi(v)
	}
	if v, ok := extract("dlvrd:"); ok {
		r.Delivered, _ = strconv.Atoi(v)
	}
	if v, ok := extract("submit date:"); ok {
		r.SubmitDate, _ = time.Parse(receiptDateLayout, v)
	}
	if v, ok := extract("done date:"); ok {
		r.DoneDate, _ = time.Parse(receiptDateLayout, v)
	}
	if v, ok := extract("stat:"); ok {
		r.Stat = v
	}
	if v, ok := extract("err:"); ok {
		r.Err = v
	}
	if v, ok := extract("text:"); ok {
		r.Text = v
	}
	return r, true
}
