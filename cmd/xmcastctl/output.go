package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// 输出格式。
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// outputFormat 读取并校验 --output。
func outputFormat(cmd *cli.Command) (string, error) {
	f := strings.ToLower(strings.TrimSpace(cmd.String("output")))
	switch f {
	case "", formatText:
		return formatText, nil
	case formatJSON, formatYAML:
		return f, nil
	default:
		return "", &usageError{msg: fmt.Sprintf("未知输出格式 %q，可选 text|json|yaml", cmd.String("output"))}
	}
}

// render 按 --output 输出 v；text 格式调用 text 自行排版。
func render(cmd *cli.Command, v any, text func(w io.Writer) error) error {
	w := cmd.Root().Writer
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}
