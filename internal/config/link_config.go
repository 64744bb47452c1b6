package config

type Link struct{}

var _ LinkConfig = Link{}

func (Link) GetLinkSuffixLength() int {
	return GetEnvInt("LINK_SUFFIX_LENGTH", 10)
}
