//go:build darwin

package paste

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation
#include <stdbool.h>
#include <ApplicationServices/ApplicationServices.h>

static bool axProcessTrusted(bool prompt) {
	const void *keys[] = {kAXTrustedCheckOptionPrompt};
	const void *values[] = {prompt ? kCFBooleanTrue : kCFBooleanFalse};
	CFDictionaryRef options = CFDictionaryCreate(kCFAllocatorDefault,
		keys, values, 1,
		&kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
	bool trusted = AXIsProcessTrustedWithOptions(options);
	CFRelease(options);
	return trusted;
}
*/
import "C"

// SystemTrust consults the OS accessibility gate that governs synthetic
// input events.
type SystemTrust struct{}

var _ TrustOracle = SystemTrust{}

// IsTrusted reports whether the process holds the accessibility grant.
// When promptUser is set the OS may raise its grant dialog pointing at
// this process.
func (SystemTrust) IsTrusted(promptUser bool) bool {
	return bool(C.axProcessTrusted(C.bool(promptUser)))
}
