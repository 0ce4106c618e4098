package printer

import (
	"fmt"

	"go.bug.st/serial"

	logInternal "github.com/AlexStarov/inkshield-GoLang-lib/log"
)

// NewSerialPrinter создаёт Printer через последовательный порт (COM или /dev/ttyUSB*).
func NewSerialPrinter(portName string, baudRate int) (*Printer, error) {
	// Получаем список доступных портов
	ports, err := serial.GetPortsList()
	if err != nil {
		logInternal.Errlog.Printf("Ошибка получения списка портов: %v", err)
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	logInternal.Debugf("Доступные порты: %v", ports)

	// Проверяем, существует ли заданный порт
	if !contains(ports, portName) {
		return nil, fmt.Errorf("serial port %s not found", portName)
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}

	serialPort, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	logInternal.Stdlog.Printf("Порт %s успешно открыт, %d бод", portName, baudRate)

	printer, err := NewPrinter(serialPort)
	if err != nil {
		serialPort.Close()
		return nil, err
	}
	if err := printer.Init(); err != nil {
		serialPort.Close()
		return nil, err
	}
	return printer, nil
}

// Проверяем, есть ли порт в списке
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
