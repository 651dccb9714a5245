// SPDX-License-Identifier: Apache-2.0

//go:build !unix && !windows

package arena

func mapAnon(int) ([]byte, func() error, error) {
	return nil, nil, errUnsupportedBacking
}
