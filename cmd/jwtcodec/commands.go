package main

import (
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/cybergodev/jwtcodec"
)

func (a *app) encodeCommand() *cobra.Command {
	var header, payload string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode header and payload JSON into a signed token",
		Long: `Encode parses the header and payload with the lenient editor grammar and
prints the compact token. Each value is literal text, @file, or - for stdin.
An empty value encodes the document as null.`,
		Example: `  jwtcodec encode --header '{alg: "HS256"}' --payload @claims.json --key secret`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := &inputReader{stdin: cmd.InOrStdin()}
			headerText, err := in.read(header)
			if err != nil {
				return err
			}
			payloadText, err := in.read(payload)
			if err != nil {
				return err
			}

			token, err := a.codec.EncodeText(headerText, payloadText)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&header, "header", `{"alg":"HS256","typ":"JWT"}`, "header JSON (text, @file or -)")
	cmd.Flags().StringVar(&payload, "payload", "", "payload JSON (text, @file or -)")
	return cmd
}

type decodeOutput struct {
	Header  gojson.RawMessage `json:"header"`
	Payload gojson.RawMessage `json:"payload"`
}

func (a *app) decodeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decode [TOKEN|-]",
		Short: "Print the header and payload of a token",
		Long: `Decode prints the pretty header followed by the pretty payload. The
signature is not checked. An absent (null) document prints as null.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := &inputReader{stdin: cmd.InOrStdin()}
			token, err := in.readToken(args)
			if err != nil {
				return err
			}

			header, payload, err := a.codec.Decode(token)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if asJSON {
				return writeDecodeJSON(out, header, payload)
			}
			for _, doc := range []*jwtcodec.Value{header, payload} {
				text, err := a.codec.Format(doc)
				if err != nil {
					return err
				}
				if text == "" {
					text = "null"
				}
				if _, err := fmt.Fprintln(out, text); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, `print one compact object {"header":...,"payload":...}`)
	return cmd
}

func writeDecodeJSON(w io.Writer, header, payload *jwtcodec.Value) error {
	var out decodeOutput
	for _, p := range []struct {
		dst *gojson.RawMessage
		v   *jwtcodec.Value
	}{{&out.Header, header}, {&out.Payload, payload}} {
		if p.v == nil {
			*p.dst = gojson.RawMessage("null")
			continue
		}
		data, err := jwtcodec.Compact(p.v)
		if err != nil {
			return err
		}
		*p.dst = data
	}

	data, err := gojson.Marshal(out)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func (a *app) verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [TOKEN|-]",
		Short: "Check the signature of a token against --key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := &inputReader{stdin: cmd.InOrStdin()}
			token, err := in.readToken(args)
			if err != nil {
				return err
			}

			if err := a.codec.Verify(token, []byte(a.cfg.Codec.Key)); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "signature valid")
			return err
		},
	}
}

func (a *app) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [TOKEN|-]",
		Short: "Show registered header fields and claims without verifying",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := &inputReader{stdin: cmd.InOrStdin()}
			token, err := in.readToken(args)
			if err != nil {
				return err
			}

			info, err := a.codec.Inspect(token)
			if err != nil {
				return err
			}
			data, err := gojson.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func (a *app) timestampCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "timestamp UNIX",
		Short: "Convert Unix seconds to a UTC date",
		Long: `Timestamp keeps the digits (and a leading minus) of its argument and
prints the UTC date they denote, e.g. 1700000000 is 2023-11-14 22:13:20 (UTC).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filtered, formatted := jwtcodec.ConvertUnixInput(args[0])
			if formatted == "" {
				return fmt.Errorf("cannot convert %q to a date", filtered)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), formatted)
			return err
		},
	}
}
