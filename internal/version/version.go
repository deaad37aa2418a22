// Package version contains the tcpprobe version.
package version

// Version is the version of tcpprobe.
const Version = "0.1.0-alpha"
