// Package protectedgeo obfuscates sensitive coordinates and short text messages with a keyed,
// deterministic and reversible transformation pipeline. The core lives in the obfuscate package;
// taps, store and the geovault command wire it into batch processing, persistence and an HTTP API.
package protectedgeo
