package utils

import (
	"io"
	"sync"
)

// BufferedWriter is a writer that holds data until Flush is called, such as *bufio.Writer.
type BufferedWriter interface {
	io.Writer
	Flush() error
}

// FlushingWriter pushes every write through to the terminal so prompts and cows appear before the next read.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewFlushingWriter wraps writer. Writers that are already flushing are returned unchanged.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if _, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return writer
	}
	return &FlushingWriter{writer: writer}
}

// Write delegates to the wrapped writer and flushes it when it buffers.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	bufferedWriter, buffers := flushingWriter.writer.(BufferedWriter)
	if !buffers {
		return bytesWritten, nil
	}
	return bytesWritten, bufferedWriter.Flush()
}
