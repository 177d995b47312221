package network

import (
	"io/fs"

	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

const (
	devPath     = "net/dev"
	headerLines = 2
	// name plus 8 receive and 8 transmit columns
	minFields = 17
)

type Collector struct {
	fsys fs.FS
	log  logger.Logger
}

type NetworkInterface = domain.NetworkInterface
