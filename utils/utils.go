package utils

import (
	"fmt"
	"strings"
)

// AddToLogMessage appends one entry to a per-item log
func AddToLogMessage(logMessagesBuilder *strings.Builder, strToAdd string) {
	logMessagesBuilder.WriteString(strToAdd)
	logMessagesBuilder.WriteString(";")
	logMessagesBuilder.WriteString("\n")
}

// FlushLogMessages prints the accumulated entries of item under component and resets the builder
func FlushLogMessages(component, item string, logMessagesBuilder *strings.Builder) {
	if logMessagesBuilder.Len() == 0 {
		return
	}
	fmt.Printf("[%s] %s\n%s", component, item, logMessagesBuilder.String())
	logMessagesBuilder.Reset()
}
