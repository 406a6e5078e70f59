//go:build !windows

package main

import (
	"github.com/adaryorg/securedesk/internal/isolate"
	"github.com/adaryorg/securedesk/internal/prompt"
)

func buildDialog(req request) (isolate.Dialog, error) {
	return prompt.New(prompt.Options{
		Title:  req.Title,
		Prompt: req.Prompt,
		Theme:  req.Theme,
	})
}

func dialogResult(d isolate.Dialog) string {
	return prompt.Secret(d)
}
