// cmd/tools/vapid-keygen/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/SherClockHolmes/webpush-go"
)

// vapid-keygen mints a VAPID key pair for the backend serving
// /api/push/vapid-public-key. Output is either env lines or JSON.
func main() {
	format := flag.String("format", "env", "Output format: env or json")
	flag.Parse()

	private, public, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: generating VAPID keys: %v\n", err)
		os.Exit(1)
	}

	switch *format {
	case "env":
		fmt.Printf("VAPID_PUBLIC_KEY=%s\n", public)
		fmt.Printf("VAPID_PRIVATE_KEY=%s\n", private)
	case "json":
		out := map[string]string{
			"publicKey":  public,
			"privateKey": private,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: encoding output: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (want env or json)\n", *format)
		os.Exit(1)
	}
}
