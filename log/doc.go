/*
Package log provides global output control across the whole of zc. Logging comes in four
levels: Silent, Info, Detail and Debug with each level more detailed than the previous.
Levels are inclusive, so, e.g., setting DetailLevel implies InfoLevel logging.

Warnings are deliberately not a level. Warningf reports a non-fatal condition the operator
almost certainly wants to see - such as an address whose reverse owner name matches none
of the declared reverse zones - and is written whenever the logger is not Silent.

All output goes to a single io.Writer (os.Stdout unless changed with SetOut) which makes
capturing it in a test trivial. Specialist output functions external to this package
should use log.Out() to access the current io.Writer for the same reason.
*/
package log
