package main

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	fp "path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-shiori/webzip"
	"github.com/sirupsen/logrus"
)

func parseInputFile(path string) ([]string, error) {
	// Open file
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Fetch each line from file
	urls := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		text := scanner.Text()
		text = strings.TrimSpace(text)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		urls = append(urls, text)
	}

	return urls, scanner.Err()
}

// dedupe removes repeated URLs while keeping their order.
func dedupe(urls []string) []string {
	seen := make(map[string]struct{})
	result := []string{}
	for _, url := range urls {
		if _, exist := seen[url]; exist {
			continue
		}
		seen[url] = struct{}{}
		result = append(result, url)
	}
	return result
}

func isDirectory(path string) bool {
	f, err := os.Stat(path)
	if err != nil {
		return false
	}

	return f.IsDir()
}

// dirMessenger is the chat surface of the CLI: texts are printed to out
// and archived files are written into dir.
type dirMessenger struct {
	sync.Mutex

	dir     string
	useGzip bool
	out     io.Writer
	nextID  int
	saved   []string
}

func (m *dirMessenger) SendText(_ context.Context, _, text, _ string) (string, error) {
	m.Lock()
	defer m.Unlock()

	m.nextID++
	m.print(text)
	return "text-" + strconv.Itoa(m.nextID), nil
}

func (m *dirMessenger) React(_ context.Context, _, messageID, reaction string) error {
	logrus.Debugf("%s %s", reaction, messageID)
	return nil
}

func (m *dirMessenger) SendDocument(_ context.Context, _ string, file *webzip.File) error {
	return m.save(file)
}

func (m *dirMessenger) SendImage(_ context.Context, _ string, file *webzip.File) error {
	return m.save(file)
}

func (m *dirMessenger) save(file *webzip.File) (err error) {
	m.Lock()
	defer m.Unlock()

	if !isDirectory(m.dir) {
		return fmt.Errorf("%s is not a directory", m.dir)
	}

	fileName := fp.Base(file.Name)
	if m.useGzip {
		fileName += ".gz"
	}

	path := fp.Join(m.dir, fileName)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	var output io.Writer = f
	if m.useGzip {
		gz := gzip.NewWriter(f)
		defer func() {
			if closeErr := gz.Close(); err == nil {
				err = closeErr
			}
		}()
		output = gz
	}

	if _, err = output.Write(file.Data); err != nil {
		return err
	}

	m.saved = append(m.saved, path)
	m.print(file.Caption + "\n💾 " + path)
	return nil
}

func (m *dirMessenger) print(text string) {
	if m.out != nil {
		fmt.Fprintln(m.out, text)
		fmt.Fprintln(m.out)
	}
}
