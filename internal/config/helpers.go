package config

import (
	"fmt"
	"time"
)

func quote(s string) string { return fmt.Sprintf("%q", s) }

func indexed(param string, i int) string { return fmt.Sprintf("%s[%d]", param, i) }

func secondsToDuration(s int) time.Duration { return time.Duration(s) * time.Second }
