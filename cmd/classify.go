package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var classifySender string

var classifyCmd = &cobra.Command{
	Use:   "classify [message body]",
	Short: "Classify a single message",
	Long:  `Runs one message through the gatekeeper and the classifier and prints the result as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	RootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&classifySender, "sender", "s", "", "Sender id of the message (e.g. 'HDFCBK', 'ADCB')")
	_ = classifyCmd.MarkFlagRequired("sender")
}

func runClassify(cmd *cobra.Command, args []string) error {
	body := args[0]
	if strings.TrimSpace(classifySender) == "" || strings.TrimSpace(body) == "" {
		return errors.New("sender and message body must not be empty")
	}

	p, err := loadParser()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !p.IsTransactionMessage(classifySender, body) {
		fmt.Fprintln(out, "Not a transaction message.")
		return nil
	}
	res, ok := p.Classify(body, classifySender)
	if !ok {
		fmt.Fprintln(out, "Not a transaction message.")
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
