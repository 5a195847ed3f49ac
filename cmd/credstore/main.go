package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/hengadev/credstore"
	"github.com/hengadev/credstore/internal/monitoring"
)

func main() {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	var err error
	switch args[0] {
	case "read":
		err = readCommand(ctx, args[1:], stdout, stderr)
	case "write":
		err = writeCommand(ctx, args[1:], stdout, stderr)
	case "delete":
		err = deleteCommand(ctx, args[1:], stdout, stderr)
	case "init":
		err = initCommand(args[1:], stdout, stderr)
	case "version":
		versionCommand(stdout)
	case "-h", "-help", "--help", "help":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return 1
	}

	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "%s failed: %v\n", args[0], err)
		}
		return exitCode(err)
	}
	return 0
}

// exitCode distinguishes a missing credential from other failures so
// scripts can test for existence.
func exitCode(err error) int {
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case credstore.IsNotFound(err):
		return 3
	case credstore.IsConfigurationError(err):
		return 2
	default:
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: credstore <command> [options]\n")
	fmt.Fprintf(w, "\nCommands:\n")
	fmt.Fprintf(w, "  read      Read a credential and print it as JSON\n")
	fmt.Fprintf(w, "  write     Create or update a credential\n")
	fmt.Fprintf(w, "  delete    Delete a credential\n")
	fmt.Fprintf(w, "  init      Initialize configuration file\n")
	fmt.Fprintf(w, "  version   Show version information\n")
	fmt.Fprintf(w, "\nRun 'credstore <command> -h' for help on a specific command.\n")
}

// commonFlags are shared by read, write and delete.
type commonFlags struct {
	configPath *string
	namespace  *string
	credType   *string
	binding    *string
	service    *string
	timeout    *time.Duration
}

func registerCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		configPath: fs.String("config", DefaultConfigPath, "Path to configuration file"),
		namespace:  fs.String("namespace", "", "Credential namespace (default $"+credstore.EnvNamespace+")"),
		credType:   fs.String("type", "", "Credential type: password, key or keyring"),
		binding:    fs.String("binding", "", "Read the binding from this file instead of the configured source"),
		service:    fs.String("service", "", "Credstore instance name inside VCAP_SERVICES"),
		timeout:    fs.Duration("timeout", 30*time.Second, "HTTP request timeout"),
	}
}

// resolve merges the configuration file with the flags that were set.
func (f commonFlags) resolve(fs *flag.FlagSet) (*Config, error) {
	explicit := false
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "config" {
			explicit = true
		}
	})

	config, err := loadConfigOrDefault(*f.configPath, explicit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", credstore.ErrInvalidConfiguration, err)
	}

	if *f.namespace != "" {
		config.Namespace = *f.namespace
	}
	if *f.credType != "" {
		config.Type = *f.credType
	}
	if *f.service != "" {
		config.Source.Service = *f.service
	}
	if *f.binding != "" {
		config.Source.Kind = SourceFile
		config.Source.Path = *f.binding
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", credstore.ErrInvalidConfiguration, err)
	}
	if config.Namespace == "" {
		return nil, fmt.Errorf("%w: namespace is required (-namespace or $%s)", credstore.ErrInvalidConfiguration, credstore.EnvNamespace)
	}
	return config, nil
}

func newClient(ctx context.Context, config *Config, timeout time.Duration, stderr io.Writer) (*credstore.Client, error) {
	source, err := config.BindingSource(ctx)
	if err != nil {
		return nil, err
	}

	binding, err := source.LoadBinding(ctx)
	if err != nil {
		return nil, err
	}

	return credstore.New(binding,
		credstore.WithHTTPClient(&http.Client{Timeout: timeout}),
		credstore.WithLogger(monitoring.NewLoggerFromEnv("cli", stderr)),
	)
}

func nameArg(fs *flag.FlagSet, name string) (string, error) {
	if name == "" && fs.NArg() > 0 {
		name = fs.Arg(0)
	}
	if name == "" {
		return "", fmt.Errorf("%w: credential name is required", credstore.ErrInvalidRequest)
	}
	return name, nil
}

func readCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("read", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := registerCommonFlags(fs)
	name := fs.String("name", "", "Credential name")

	if err := fs.Parse(args); err != nil {
		return err
	}

	credName, err := nameArg(fs, *name)
	if err != nil {
		return err
	}
	config, err := common.resolve(fs)
	if err != nil {
		return err
	}
	client, err := newClient(ctx, config, *common.timeout, stderr)
	if err != nil {
		return err
	}

	credential, err := client.Read(ctx, config.Namespace, config.Type, credName)
	if err != nil {
		return err
	}
	return printJSON(stdout, credential)
}

func writeCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("write", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := registerCommonFlags(fs)
	name := fs.String("name", "", "Credential name")
	value := fs.String("value", "", "Credential value")
	username := fs.String("username", "", "Username stored with the credential")
	format := fs.String("format", "", "Key format, for key credentials")
	data := fs.String("data", "", "Complete credential as JSON; overrides the other credential flags")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config, err := common.resolve(fs)
	if err != nil {
		return err
	}

	var credential any
	if *data != "" {
		if !json.Valid([]byte(*data)) {
			return fmt.Errorf("%w: -data is not valid JSON", credstore.ErrInvalidPayload)
		}
		credential = json.RawMessage(*data)
	} else {
		credName, err := nameArg(fs, *name)
		if err != nil {
			return err
		}
		credential = buildCredential(config.Type, credName, *value, *username, *format)
	}

	client, err := newClient(ctx, config, *common.timeout, stderr)
	if err != nil {
		return err
	}

	confirmation, err := client.Write(ctx, config.Namespace, config.Type, credential)
	if err != nil {
		return err
	}
	return printJSON(stdout, confirmation)
}

func buildCredential(credentialType, name, value, username, format string) any {
	switch credentialType {
	case credstore.TypePassword:
		return credstore.Password{Name: name, Value: value, Username: username}
	case credstore.TypeKey:
		return credstore.Key{Name: name, Value: value, Format: format, Username: username}
	default:
		credential := map[string]string{"name": name, "value": value}
		if username != "" {
			credential["username"] = username
		}
		return credential
	}
}

func deleteCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := registerCommonFlags(fs)
	name := fs.String("name", "", "Credential name")

	if err := fs.Parse(args); err != nil {
		return err
	}

	credName, err := nameArg(fs, *name)
	if err != nil {
		return err
	}
	config, err := common.resolve(fs)
	if err != nil {
		return err
	}
	client, err := newClient(ctx, config, *common.timeout, stderr)
	if err != nil {
		return err
	}

	if err := client.Delete(ctx, config.Namespace, config.Type, credName); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deleted %s %q from namespace %q\n", config.Type, credName, config.Namespace)
	return nil
}

func initCommand(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", DefaultConfigPath, "Path of the configuration file to create")
	force := fs.Bool("force", false, "Overwrite existing configuration file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*force {
		if _, err := os.Stat(*configPath); err == nil {
			return fmt.Errorf("configuration file %s already exists, use -force to overwrite", *configPath)
		}
	}

	fmt.Fprintf(stdout, "Creating configuration file at %s...\n", *configPath)
	if err := SaveConfig(DefaultConfig(), *configPath); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Configuration file created!")
	return nil
}

func versionCommand(w io.Writer) {
	fmt.Fprintln(w, credstore.VersionInfo())
	fmt.Fprintln(w, "Client for the encrypted credential store")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Envelope: JWE compact, RSA-OAEP-256 + A256GCM")
	fmt.Fprintf(w, "Credential types: %s, %s, %s\n", credstore.TypePassword, credstore.TypeKey, credstore.TypeKeyring)
	fmt.Fprintf(w, "Binding sources: %s, %s, %s, %s\n", SourceEnv, SourceFile, SourceVault, SourceAWS)
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("%w: %w", credstore.ErrInvalidPayload, err)
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}
