package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-x string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   access token HMAC secret
//	-z string   reference timezone (IANA name)
//	-t int      consent token validity, hours
//	-k int      suggested break length, minutes
//	-l string   consent link base URL
//	-m string   SMTP server address (host:port)
//	-f string   sender address for parent e-mails
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//
// Only the flags listed here are parsed; os.Args is filtered first with
// flagx.FilterArgs so that -c/-config and foreign flags do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-x", "-d", "-s", "-z", "-t", "-k", "-l", "-m", "-f", "-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "x", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.Timezone, "z", config.Timezone, "reference timezone")

	consentTokenValidity := fs.Int("t", int(config.ConsentTokenValidity.Hours()), "consent token validity (in hours)")
	breakSuggestion := fs.Int("k", int(config.BreakSuggestion.Minutes()), "suggested break (in minutes)")

	fs.StringVar(&config.ConsentLinkBaseURL, "l", config.ConsentLinkBaseURL, "consent link base URL")
	fs.StringVar(&config.SMTPAddr, "m", config.SMTPAddr, "SMTP server address")
	fs.StringVar(&config.MailFrom, "f", config.MailFrom, "mail sender")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ConsentTokenValidity = time.Duration(*consentTokenValidity) * time.Hour
	config.BreakSuggestion = time.Duration(*breakSuggestion) * time.Minute
}
