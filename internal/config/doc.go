// Package config provides configuration structures for a11yscan.
// It defines the page registry, the defaults of an audit run and the
// optional YAML configuration file that can override them.
package config
