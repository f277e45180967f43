package cvk

import (
	"context"
	"log/slog"

	"github.com/gogpu/cvk/vk"
)

// debugObjects pairs the debug-utils functions with the messenger they
// created. The messenger must be destroyed before its instance.
type debugObjects struct {
	utils     DebugUtils
	messenger vk.DebugUtilsMessengerEXT
}

func (d *debugObjects) destroy() {
	if d.messenger != vk.NullMessenger {
		d.utils.DestroyMessenger(d.messenger)
		d.messenger = vk.NullMessenger
	}
}

// messengerInfo is used both for the messenger and for the create info
// chained into instance creation.
func messengerInfo() *vk.DebugUtilsMessengerCreateInfo {
	return &vk.DebugUtilsMessengerCreateInfo{
		Severity: vk.DebugSeverityVerbose | vk.DebugSeverityWarning | vk.DebugSeverityError,
		Type:     vk.DebugTypeGeneral | vk.DebugTypeValidation | vk.DebugTypePerformance,
		Callback: logDebugMessage,
	}
}

// logDebugMessage forwards a driver message to Logger. It never asks the
// driver to abort the triggering call.
func logDebugMessage(msg vk.DebugMessage) bool {
	Logger().Log(context.Background(), severityLevel(msg.Severity),
		"validation layer: "+msg.Message,
		"type", msg.Type.String(),
		"id", msg.IDName,
	)
	return false
}

func severityLevel(s vk.DebugUtilsMessageSeverityFlags) slog.Level {
	switch {
	case s&vk.DebugSeverityError != 0:
		return slog.LevelError
	case s&vk.DebugSeverityWarning != 0:
		return slog.LevelWarn
	case s&vk.DebugSeverityInfo != 0:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
