// Package mocks contains mocks for the network interfaces in [model].
package mocks
