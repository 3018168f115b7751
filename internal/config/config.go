// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/alvinbaena/pwd-register/internal/util"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. PWDREG_SERVICE_URL.
const EnvPrefix = "PWDREG"

// Client configures the sign-up pipeline and its connection to the service.
type Client struct {
	ServiceURL      string        `mapstructure:"SERVICE_URL" validate:"required,url"`
	Debounce        time.Duration `mapstructure:"DEBOUNCE" validate:"min=0"`
	NotificationTTL time.Duration `mapstructure:"NOTIFICATION_TTL" validate:"min=0"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT" validate:"min=0"`
	RetryMax        int           `mapstructure:"RETRY_MAX" validate:"min=0,max=10"`
	CacheSize       int64         `mapstructure:"CACHE_SIZE" validate:"min=0"`
	InsecureTLS     bool          `mapstructure:"INSECURE_TLS"`
}

// Server configures the stand-in analysis service.
type Server struct {
	Port    uint16 `mapstructure:"PORT" validate:"required"`
	SelfTLS bool   `mapstructure:"SELF_TLS"`
	TLSCert string `mapstructure:"TLS_CERT" validate:"required_with=TLSKey"`
	TLSKey  string `mapstructure:"TLS_KEY" validate:"required_with=TLSCert"`
	Debug   bool   `mapstructure:"DEBUG"`
}

func init() {
	viper.SetDefault("SERVICE_URL", "http://localhost:3100")
	viper.SetDefault("DEBOUNCE", 180*time.Millisecond)
	viper.SetDefault("NOTIFICATION_TTL", 3500*time.Millisecond)
	viper.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	viper.SetDefault("RETRY_MAX", 1)
	viper.SetDefault("CACHE_SIZE", 256)
	viper.SetDefault("PORT", 3100)
}

func bindEnvs(iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)
	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			continue
		}
		switch v.Kind() {
		case reflect.Struct:
			bindEnvs(v.Interface(), append(parts, tv)...)
		default:
			_ = viper.BindEnv(strings.Join(append(parts, tv), "."))
		}
	}
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "url":
		return "This field must be an absolute URL"
	case "min", "max":
		return fmt.Sprintf("This field must be %s %s", map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param())
	case "required_with":
		return fmt.Sprintf("This field requires the presence of %s", util.ToScreamingSnakeCase(fe.Param()))
	}
	return fe.Error() // default error
}

func load(config interface{}) error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// This is to not require a config file to unmarshal Envs in a struct
	// https://github.com/spf13/viper/issues/188#issuecomment-399884438
	bindEnvs(reflect.ValueOf(config).Elem().Interface())

	if err := viper.Unmarshal(config); err != nil {
		return err
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			var msgs []string
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s_%s: %s", EnvPrefix, util.ToScreamingSnakeCase(fe.Field()), msgForTag(fe)))
			}
			return errors.New(strings.Join(msgs, ". "))
		}
		return fmt.Errorf("validating configuration from environment: %w", err)
	}

	return nil
}

// LoadClient reads the client configuration from the environment and any
// flags bound to viper.
func LoadClient() (config Client, err error) {
	err = load(&config)
	return
}

func LoadServer() (config Server, err error) {
	err = load(&config)
	return
}
