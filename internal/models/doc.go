// Package models lists the chat models available at the configured
// translation endpoint, so a --model value can be picked for translate.
package models
