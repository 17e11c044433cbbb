package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/scimaterials/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string       address and port of the file server
//	-i int          upload interval in seconds
//	-p int          online check interval in seconds
//	-t string       access token
//	-q int          upload queue capacity (0 = unbounded)
//	-db string      upload journal path
//	-author string  author id attached to uploads
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-p", "-t", "-q", "-db", "-author"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	uploadInterval := fs.Int("i", int(cfg.UploadInterval.Seconds()), "upload interval (in seconds)")
	onlineCheckInterval := fs.Int("p", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	fs.IntVar(&cfg.QueueCapacity, "q", cfg.QueueCapacity, "upload queue capacity")
	fs.StringVar(&cfg.JournalPath, "db", cfg.JournalPath, "upload journal path")
	fs.StringVar(&cfg.AuthorID, "author", cfg.AuthorID, "author id")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.UploadInterval = time.Duration(*uploadInterval) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
