package diag

import "strings"

// MessageChain is a message with nested elaborations. A relation failure
// reports the outermost mismatch as the head and the reasons underneath it.
type MessageChain struct {
	Code Code
	Text string
	Next []*MessageChain
}

// Chain creates a single message from the template of code
func Chain(code Code, args ...any) *MessageChain {
	return &MessageChain{Code: code, Text: code.Format(args...)}
}

// Wrap makes c the elaboration of a new head message
func (c *MessageChain) Wrap(code Code, args ...any) *MessageChain {
	head := Chain(code, args...)
	if c != nil {
		head.Next = []*MessageChain{c}
	}
	return head
}

// Append adds elaborations under c
func (c *MessageChain) Append(details ...*MessageChain) *MessageChain {
	for _, d := range details {
		if d != nil {
			c.Next = append(c.Next, d)
		}
	}
	return c
}

// Depth is the number of messages on the longest path of the chain
func (c *MessageChain) Depth() int {
	if c == nil {
		return 0
	}
	deepest := 0
	for _, n := range c.Next {
		deepest = max(deepest, n.Depth())
	}
	return 1 + deepest
}

func (c *MessageChain) String() string {
	if c == nil {
		return ""
	}
	sb := &strings.Builder{}
	c.write(sb, 0)
	return sb.String()
}

func (c *MessageChain) write(sb *strings.Builder, indent int) {
	if indent > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("  ", indent))
	}
	sb.WriteString(c.Text)
	for _, n := range c.Next {
		n.write(sb, indent+1)
	}
}
