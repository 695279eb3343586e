// Package bot wires configuration, sinks and the IRC client together.
package bot
