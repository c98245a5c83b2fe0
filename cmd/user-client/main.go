// Command user-client отправляет один запрос сервису пользователей и
// печатает ответ в JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/adapters/in/socket"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

func main() {
	addr := pflag.String("addr", "localhost:5001", "service address")
	action := pflag.String("action", "", "create_user|authenticate|get_user|update_user|delete_user|list_users|verify_token")
	data := pflag.String("data", "{}", "request data as JSON (or YAML)")
	useCBOR := pflag.Bool("cbor", false, "encode the request as CBOR")
	timeout := pflag.Duration("timeout", 10*time.Second, "request timeout")
	pflag.Parse()

	if *action == "" {
		fmt.Fprintln(os.Stderr, "Error: --action is required")
		pflag.Usage()
		os.Exit(2)
	}

	// YAML: надмножество JSON, так удобнее писать руками
	var payload map[string]any
	if err := yaml.Unmarshal([]byte(*data), &payload); err != nil {
		fmt.Fprintf(os.Stderr, "Error: --data: %v\n", err)
		os.Exit(2)
	}

	format := socket.FormatJSON
	if *useCBOR {
		format = socket.FormatCBOR
	}
	client := socket.NewClient(*addr, socket.WithFormat(format), socket.WithTimeout(*timeout))

	resp, err := client.Raw(context.Background(), *action, payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if ok, _ := resp["success"].(bool); !ok {
		os.Exit(1)
	}
}
