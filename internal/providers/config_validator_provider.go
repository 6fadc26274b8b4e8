package providers

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gookit/validate"
	"zoblogs/internal/structures"
)

func init() {
	validate.AddValidator("ethAddress", func(val any) bool {
		s, ok := val.(string)
		return ok && common.IsHexAddress(s)
	})
}

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}

	switch c.conf.Registry.Driver {
	case "file":
		if c.conf.Registry.Dir == "" {
			return fmt.Errorf("invalid config: registry.dir is required for the file driver")
		}
	case "redis":
		if c.conf.Registry.RedisUrl == "" {
			return fmt.Errorf("invalid config: registry.redisUrl is required for the redis driver")
		}
	case "postgres":
		if c.conf.Registry.PostgresDsn == "" {
			return fmt.Errorf("invalid config: registry.postgresDsn is required for the postgres driver")
		}
	}
	return nil
}
