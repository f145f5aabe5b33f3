// Package ipc locates and reads Hyprland's event socket (.socket2.sock).
//
// The socket carries newline-delimited lines of the form
//
//	EVENT>>field1,field2,...
//
// with no length prefix and no escaping.
package ipc
